package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foomo/contentserver-slugs/schema"
	"github.com/foomo/contentserver-slugs/service"
	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/validation"
)

const Version = "0.1.0"

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type ValidateSlugRequest struct {
	DocumentID   string `json:"documentId"`   // id of the document owning the slug, may be a draft id
	DocumentType string `json:"documentType"` // schema type name of the document
	Slug         string `json:"slug"`         // the slug to validate
}

type ValidateSlugResponse struct {
	Report *vo.Report `json:"report"`
}

type SlugRequest struct {
	Slug string `json:"slug"`
}

type NormalizeSlugResponse struct {
	Slug       string `json:"slug"`
	Normalized string `json:"normalized"`
}

type SlugVariantsResponse struct {
	Slug     string   `json:"slug"`
	Variants []string `json:"variants"`
}

type GenerateSlugRequest struct {
	DocumentID   string `json:"documentId"`
	DocumentType string `json:"documentType"`
	Source       string `json:"source"` // title or other text to derive the slug from
}

type GenerateSlugResponse struct {
	Slug string `json:"slug"`
}

type DescribeSchemaRequest struct {
	Format string `json:"format"`
}

// NewServer creates a new MCP server with the slug tools. The options are
// applied to the schema returned by describeSchema.
func NewServer(serviceInstance service.Service, opts ...validation.Option) *server.MCPServer {
	s := server.NewMCPServer(
		"Content Slugs MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	validateTool := mcp.NewTool("validateSlug",
		mcp.WithDescription("Validate a document slug and report every failed check with its severity"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The id of the document, e.g. 'drafts.page-1'"),
		),
		mcp.WithString("documentType",
			mcp.Required(),
			mcp.Description("The schema type of the document, e.g. 'page'"),
		),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The slug to validate, e.g. '/recipes/italian/'"),
		),
	)
	s.AddTool(validateTool, mcp.NewTypedToolHandler(getValidateSlugHandler(serviceInstance)))

	normalizeTool := mcp.NewTool("normalizeSlug",
		mcp.WithDescription("Normalize a slug to its canonical '/segment/' form"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The slug to normalize"),
		),
	)
	s.AddTool(normalizeTool, mcp.NewTypedToolHandler(getNormalizeSlugHandler(serviceInstance)))

	variantsTool := mcp.NewTool("slugVariants",
		mcp.WithDescription("List the leading and trailing slash variants a slug is matched against"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The slug to expand"),
		),
	)
	s.AddTool(variantsTool, mcp.NewTypedToolHandler(getSlugVariantsHandler(serviceInstance)))

	generateTool := mcp.NewTool("generateSlug",
		mcp.WithDescription("Generate a valid slug from a title, suffixed until it is unique"),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The id of the document the slug is generated for"),
		),
		mcp.WithString("documentType",
			mcp.Required(),
			mcp.Description("The schema type of the document"),
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("The text to derive the slug from, usually the title"),
		),
	)
	s.AddTool(generateTool, mcp.NewTypedToolHandler(getGenerateSlugHandler(serviceInstance)))

	describeTool := mcp.NewTool("describeSchema",
		mcp.WithDescription("Describe the content schema types and their slug validation rules"),
		mcp.WithString("format",
			mcp.Description("Output format, 'json' (default) or 'yaml'"),
			mcp.Enum(FormatJSON, FormatYAML),
		),
	)
	s.AddTool(describeTool, mcp.NewTypedToolHandler(getDescribeSchemaHandler(schema.Types(opts...))))

	return s
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func getValidateSlugHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ValidateSlugRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ValidateSlugRequest) (*mcp.CallToolResult, error) {
		if args.DocumentID == "" {
			return mcp.NewToolResultError("documentId is required"), nil
		}
		if args.DocumentType == "" {
			return mcp.NewToolResultError("documentType is required"), nil
		}

		doc := &vo.Document{ID: args.DocumentID, Type: args.DocumentType}
		var value *vo.Slug
		if args.Slug != "" {
			value = vo.NewSlug(args.Slug)
		}
		report, err := serviceInstance.ValidateSlug(ctx, doc, value)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(ValidateSlugResponse{Report: report})
	}
}

func getNormalizeSlugHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SlugRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SlugRequest) (*mcp.CallToolResult, error) {
		return jsonResult(NormalizeSlugResponse{
			Slug:       args.Slug,
			Normalized: serviceInstance.NormalizeSlug(args.Slug),
		})
	}
}

func getSlugVariantsHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SlugRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SlugRequest) (*mcp.CallToolResult, error) {
		return jsonResult(SlugVariantsResponse{
			Slug:     args.Slug,
			Variants: serviceInstance.SlugVariants(args.Slug),
		})
	}
}

func getGenerateSlugHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GenerateSlugRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GenerateSlugRequest) (*mcp.CallToolResult, error) {
		if args.Source == "" {
			return mcp.NewToolResultError("source is required"), nil
		}

		doc := &vo.Document{ID: args.DocumentID, Type: args.DocumentType}
		generated, err := serviceInstance.GenerateSlug(ctx, doc, args.Source)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to generate slug: %v", err)), nil
		}
		return jsonResult(GenerateSlugResponse{Slug: generated})
	}
}

func getDescribeSchemaHandler(types []schema.Type) func(ctx context.Context, request mcp.CallToolRequest, args DescribeSchemaRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args DescribeSchemaRequest) (*mcp.CallToolResult, error) {
		var (
			out []byte
			err error
		)
		switch args.Format {
		case "", FormatJSON:
			out, err = schema.MarshalJSON(types)
		case FormatYAML:
			out, err = schema.MarshalYAML(types)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", args.Format)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to describe schema: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
