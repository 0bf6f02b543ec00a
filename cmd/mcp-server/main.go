package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/usecase"
	"cf-bulk-manager/pkg/config"
	"cf-bulk-manager/pkg/storage"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize storage
	store := storage.NewJSONStorage(cfg.DataDir)

	// Initialize Cloudflare client
	var cfClient cloudflare.Client
	if cfg.UseAPIToken() {
		cfClient, err = cloudflare.NewClient(cfg.CloudflareAPIToken)
	} else {
		cfClient, err = cloudflare.NewClientWithKey(cfg.CloudflareAPIKey, cfg.CloudflareEmail)
	}
	if err != nil {
		log.Fatalf("Failed to create Cloudflare client: %v", err)
	}

	// stdout carries the protocol, keep logging on stderr
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	services := usecase.NewServices(cfClient, store, cfg.ZoneCacheTTL, logger)

	// Create MCP server with tool capabilities enabled
	s := server.NewMCPServer(
		"cf-bulk-manager",
		"1.0.0",
		server.WithLogging(),
		server.WithToolCapabilities(true),
	)

	// Register tool: sync_zones
	syncZonesTool := mcp.NewTool("sync_zones",
		"Fetch the complete Cloudflare zone list and refresh the local cache",
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	)
	s.AddTool(syncZonesTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		zones, err := services.Zones.SyncZones(context.Background())
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(fmt.Sprintf("Synced %d zones", len(zones))), nil
	})

	// Register tool: list_zones
	listZonesTool := mcp.NewTool("list_zones",
		"List cached Cloudflare zones, optionally filtered. filter is a substring, or a pasted domain list when bulk is true.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Substring to match against zone names",
				},
				"bulk": map[string]interface{}{
					"type":        "boolean",
					"description": "Treat filter as a pasted domain list, matching any term",
				},
			},
		},
	)
	s.AddTool(listZonesTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		entry, err := services.Zones.EnsureFresh(context.Background())
		if err != nil {
			return errorResult(err), nil
		}

		mode := usecase.FilterSimple
		if v, ok := arguments["bulk"].(bool); ok && v {
			mode = usecase.FilterBulk
		}
		query, _ := arguments["filter"].(string)

		zones := usecase.FilterZones(entry.Zones, mode, query)
		result := make([]map[string]string, len(zones))
		for i, z := range zones {
			result[i] = map[string]string{
				"id":     z.ID,
				"name":   z.Name,
				"status": string(z.Status),
			}
		}
		return jsonResult(result), nil
	})

	// Register tool: add_domains
	addDomainsTool := mcp.NewTool("add_domains",
		"Add a list of domains as new Cloudflare zones. domains is free-form pasted text: one domain per line, or comma/space separated.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"domains": map[string]interface{}{
					"type":        "string",
					"description": "Pasted domain list",
				},
			},
			"required": []string{"domains"},
		},
	)
	s.AddTool(addDomainsTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		text, _ := arguments["domains"].(string)
		results, err := services.Zones.CreateZones(context.Background(), domain.ParseDomainList(text))
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(results), nil
	})

	// Register tool: bulk_dns
	bulkDNSTool := mcp.NewTool("bulk_dns",
		"Apply a DNS record preset to every zone matching a pasted domain list. preset is one of: spf, mx, gsuite, dmarc.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"zones": map[string]interface{}{
					"type":        "string",
					"description": "Pasted domain list selecting the target zones",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Record preset: spf, mx, gsuite or dmarc",
				},
				"dmarc_email": map[string]interface{}{
					"type":        "string",
					"description": "Report address for the dmarc preset, may contain {{DOMAIN}}",
				},
			},
			"required": []string{"zones", "preset"},
		},
	)
	s.AddTool(bulkDNSTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		targets, err := resolveTargets(services, arguments)
		if err != nil {
			return errorResult(err), nil
		}

		var records []domain.RecordTemplate
		preset, _ := arguments["preset"].(string)
		switch preset {
		case "spf":
			records = []domain.RecordTemplate{domain.PresetGoogleSPF()}
		case "mx":
			records = []domain.RecordTemplate{domain.PresetGoogleMX()}
		case "gsuite":
			records = []domain.RecordTemplate{domain.PresetGoogleSPF(), domain.PresetGoogleMX()}
		case "dmarc":
			email, _ := arguments["dmarc_email"].(string)
			if email == "" {
				if settings, err := store.LoadSettings(); err == nil {
					email = settings.DMARCReportEmail
				}
			}
			records = []domain.RecordTemplate{domain.PresetDMARC(email)}
		default:
			return errorResult(fmt.Errorf("unknown preset %q", preset)), nil
		}

		report, err := services.Bulk.Run(context.Background(), domain.BulkJob{
			Targets:   targets,
			Operation: domain.Operation{Kind: domain.OperationDNSBulk, Records: records},
		}, nil)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(report), nil
	})

	// Register tool: bulk_redirect
	bulkRedirectTool := mcp.NewTool("bulk_redirect",
		"Append a URL forwarding rule to every zone matching a pasted domain list. source_url and target_url may contain {{DOMAIN}}.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"zones": map[string]interface{}{
					"type":        "string",
					"description": "Pasted domain list selecting the target zones",
				},
				"source_url": map[string]interface{}{
					"type":        "string",
					"description": "Source URL pattern, e.g. {{DOMAIN}}/promo",
				},
				"target_url": map[string]interface{}{
					"type":        "string",
					"description": "Redirect target URL",
				},
				"status_code": map[string]interface{}{
					"type":        "number",
					"description": "Redirect status code (default: 301)",
				},
			},
			"required": []string{"zones", "source_url", "target_url"},
		},
	)
	s.AddTool(bulkRedirectTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		targets, err := resolveTargets(services, arguments)
		if err != nil {
			return errorResult(err), nil
		}

		tpl := domain.RedirectTemplate{}
		tpl.SourcePattern, _ = arguments["source_url"].(string)
		tpl.TargetURL, _ = arguments["target_url"].(string)
		if v, ok := arguments["status_code"].(float64); ok {
			tpl.StatusCode = int(v)
		}

		report, err := services.Bulk.Run(context.Background(), domain.BulkJob{
			Targets:   targets,
			Operation: domain.Operation{Kind: domain.OperationRedirect, Redirect: tpl},
		}, nil)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(report), nil
	})

	// Register tool: last_report
	lastReportTool := mcp.NewTool("last_report",
		"Return the report of the most recent bulk run",
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	)
	s.AddTool(lastReportTool, func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		report := services.Bulk.Report()
		if report == nil {
			return textResult("No bulk run recorded"), nil
		}
		return jsonResult(report), nil
	})

	// Start server (stdio only)
	log.Println("Starting MCP stdio server...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// resolveTargets matches the pasted "zones" argument against the cached
// zone list and returns the matching zone IDs in cache order
func resolveTargets(services *usecase.Services, arguments map[string]interface{}) ([]string, error) {
	text, _ := arguments["zones"].(string)
	if text == "" {
		return nil, domain.ErrEmptyTargets
	}

	entry, err := services.Zones.EnsureFresh(context.Background())
	if err != nil {
		return nil, err
	}

	zones := usecase.FilterZones(entry.Zones, usecase.FilterBulk, text)
	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no cached zones match the given list")
	}
	return ids, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []interface{}{mcp.NewTextContent(text)},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []interface{}{mcp.NewTextContent(fmt.Sprintf("Error: %v", err))},
	}
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err)
	}
	return textResult(string(data))
}
