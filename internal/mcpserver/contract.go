package mcpserver

// ContentFormatContract describes how training documents are laid out on
// disk and which front-matter keys the ingestion step understands.
const ContentFormatContract = `# Hangar Content Format Contract

Training documents are Markdown files in a directory tree organised by ATA chapter.

## Layout

` + "```" + `text
content/
  21/                      # depth 1: two-digit ATA chapter code
    20/                    # depth 2: section code
      recirculation.md     # id 21-20-recirculation
    packs.md               # directly under a chapter: section "main"
  overview.md              # at the root: chapter "general", section "main"
` + "```" + `

- The file stem is the slug. It must be unique within its chapter and section.
- The document id is ` + "`" + `{chapter}-{section}-{slug}` + "`" + `. The first file to claim an
  id wins; later duplicates are skipped during ingestion.
- Hidden files and directories (leading dot) are ignored.

## Front-matter

` + "```" + `markdown
---
title: "Recirculating System"   # optional, defaults to the slug with - and _ as spaces
difficulty: Intermediate        # optional: Beginner, Intermediate or Advanced
duration: 35                    # optional minutes: 35, "35" or "35 min"
chapter: "21"                   # only used for files at the root
section: "20"                   # only used for files at the root or directly under a chapter
---
` + "```" + `

YAML (` + "`" + `---` + "`" + `) and TOML (` + "`" + `+++` + "`" + `) fences are accepted. Other keys are kept verbatim.
A front-matter block that does not parse causes the whole file to be skipped.
Quote chapter codes with a leading zero (` + "`" + `"05"` + "`" + `).

## Body

Headings (` + "`" + `#` + "`" + ` to ` + "`" + `###` + "`" + `), **bold**, *italic*, inline and fenced code, ` + "`" + `-` + "`" + `/` + "`" + `*` + "`" + ` lists,
` + "`" + `>` + "`" + ` blockquotes and blank-line paragraphs. Raw HTML is filtered to headings,
paragraphs, emphasis, code, lists, blockquotes and tables; attributes other than
` + "`" + `class` + "`" + ` are removed. Nested lists and links are not supported by the basic renderer.
`
