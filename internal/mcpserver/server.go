// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the read-only Hangar content queries via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hangar/internal/catalog"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/validate"
)

// ContractURI is the resource URI of the content format contract.
const ContractURI = "hangar://content-format"

const defaultSearchLimit = 20

// Server wraps the MCP server with Hangar tools.
type Server struct {
	mcp       *server.MCPServer
	catalog   *catalog.Repository
	validator *validate.Validator
	renderer  render.Renderer
}

// New creates a new MCP server with all Hangar tools registered. renderer
// must sanitize its output.
func New(repo *catalog.Repository, v *validate.Validator, renderer render.Renderer, version string) *Server {
	s := &Server{catalog: repo, validator: v, renderer: renderer}

	s.mcp = server.NewMCPServer(
		"Hangar",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Case-insensitive substring search over document titles, bodies, chapter and section codes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return one training document, including its sanitized HTML body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id, {chapter}-{section}-{slug}")),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("List the ATA chapters that have content, with their system names."),
	), s.listChapters)

	s.mcp.AddTool(mcp.NewTool("list_chapter",
		mcp.WithDescription("List the documents of one ATA chapter, optionally narrowed to a section."),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Two-digit ATA chapter code, e.g. 21")),
		mcp.WithString("section", mcp.Description("Optional section code, e.g. 20 or main")),
	), s.listChapter)

	s.mcp.AddTool(mcp.NewTool("content_structure",
		mcp.WithDescription("Return the chapter → section → document navigation tree."),
	), s.contentStructure)

	s.mcp.AddTool(mcp.NewTool("content_stats",
		mcp.WithDescription("Return document totals, chapter count and counts per difficulty."),
	), s.contentStats)

	s.mcp.AddTool(mcp.NewTool("render_markdown",
		mcp.WithDescription("Render Markdown in the training content dialect to sanitized HTML."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source")),
	), s.renderMarkdown)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the content source layout and front-matter contract. "+
			"Read it before proposing new training documents."),
	), s.getContentContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Content Format Contract",
			mcp.WithResourceDescription("Directory layout and front-matter rules for training documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// documentRef is the compact listing form of a document.
type documentRef struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Chapter         string            `json:"chapter"`
	Section         string            `json:"section"`
	Difficulty      models.Difficulty `json:"difficulty,omitempty"`
	DurationMinutes int               `json:"durationMinutes,omitempty"`
}

func refs(docs []models.Document, limit int) []documentRef {
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]documentRef, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentRef{
			ID:              d.ID,
			Title:           d.Title,
			Chapter:         d.Chapter,
			Section:         d.Section,
			Difficulty:      d.Difficulty,
			DurationMinutes: d.DurationMinutes,
		})
	}
	return out
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.validator.Query(query)
	if !res.Valid {
		return mcp.NewToolResultError(strings.Join(res.Reasons, "; ")), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	return jsonResult(refs(s.catalog.Search(res.Value), limit))
}

func (s *Server) getDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, ok := s.catalog.ByID(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(d)
}

func (s *Server) listChapters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, c := range s.catalog.AvailableChapters() {
		fmt.Fprintf(&b, "%s\t%s\n", c, catalog.ChapterTitle(c))
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no chapters"), nil
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

func (s *Server) listChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := req.RequireString("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var docs []models.Document
	if section := req.GetString("section", ""); section != "" {
		docs = s.catalog.ByChapterAndSection(chapter, section)
	} else {
		docs = s.catalog.ByChapter(chapter)
	}
	return jsonResult(refs(docs, 0))
}

func (s *Server) contentStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Structure())
}

func (s *Server) contentStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Stats())
}

func (s *Server) renderMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.renderer.Render(md)), nil
}

func (s *Server) getContentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}
