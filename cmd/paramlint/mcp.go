package main

import (
	"log/slog"

	"github.com/panbanda/paramlint/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the unused
parameter check as a tool that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "paramlint": {
        "command": "paramlint",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - check_unused_parameters   Unused method, constructor and catch parameters

Available prompts:
  - unused-parameter-cleanup  Propose signature cleanups for reported parameters`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version,
		mcpserver.WithConfig(cfg),
		mcpserver.WithLogger(slog.Default()),
	)
	return server.Run(c.Context)
}
