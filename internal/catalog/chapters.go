package catalog

// chapterTitles maps ATA iSpec 2200 chapter codes to their system names.
var chapterTitles = map[string]string{
	"05": "Time Limits / Maintenance Checks",
	"06": "Dimensions and Areas",
	"07": "Lifting and Shoring",
	"08": "Leveling and Weighing",
	"09": "Towing and Taxiing",
	"10": "Parking, Mooring, Storage and Return to Service",
	"11": "Placards and Markings",
	"12": "Servicing",
	"20": "Standard Practices - Airframe",
	"21": "Air Conditioning",
	"22": "Auto Flight",
	"23": "Communications",
	"24": "Electrical Power",
	"25": "Equipment / Furnishings",
	"26": "Fire Protection",
	"27": "Flight Controls",
	"28": "Fuel",
	"29": "Hydraulic Power",
	"30": "Ice and Rain Protection",
	"31": "Indicating / Recording Systems",
	"32": "Landing Gear",
	"33": "Lights",
	"34": "Navigation",
	"35": "Oxygen",
	"36": "Pneumatic",
	"38": "Water / Waste",
	"45": "Central Maintenance System",
	"46": "Information Systems",
	"49": "Airborne Auxiliary Power",
	"51": "Standard Practices and Structures - General",
	"52": "Doors",
	"53": "Fuselage",
	"54": "Nacelles / Pylons",
	"55": "Stabilizers",
	"56": "Windows",
	"57": "Wings",
	"61": "Propellers / Propulsors",
	"70": "Standard Practices - Engine",
	"71": "Power Plant",
	"72": "Engine",
	"73": "Engine Fuel and Control",
	"74": "Ignition",
	"75": "Air",
	"76": "Engine Controls",
	"77": "Engine Indicating",
	"78": "Exhaust",
	"79": "Oil",
	"80": "Starting",
}

// ChapterTitle returns the ATA system name for code, or "Chapter {code}".
func ChapterTitle(code string) string {
	if t, ok := chapterTitles[code]; ok {
		return t
	}
	return "Chapter " + code
}
