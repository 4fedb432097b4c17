// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes reaction thermodynamics tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/thermo/internal/apperr"
	"github.com/starford/thermo/internal/models"
	"github.com/starford/thermo/internal/thermoservice"
)

const formatURI = "thermo://equation-format"

// Evaluator is the service surface the tools need.
type Evaluator interface {
	Evaluate(ctx context.Context, req thermoservice.Request) (*thermoservice.Report, error)
	Parse(text string) (*models.Equation, error)
	CheckBalance(text string) (*models.Equation, error)
	Resolve(ctx context.Context, id string) (models.Resolution, error)
}

// Server wraps the MCP server with thermo tools.
type Server struct {
	mcp           *server.MCPServer
	svc           Evaluator
	defaultKelvin float64
}

// New creates a new MCP server with all tools registered.
func New(svc Evaluator, defaultKelvin float64, version string) *Server {
	s := &Server{svc: svc, defaultKelvin: defaultKelvin}

	s.mcp = server.NewMCPServer(
		"Thermo",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("evaluate_reaction",
		mcp.WithDescription("Compute ΔH, ΔS and ΔG of a balanced reaction at a temperature and "+
			"classify it as spontaneous, non-spontaneous or at equilibrium. "+
			"See the thermo://equation-format resource for the accepted syntax."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Equation, e.g. CH4 + 2 O2 -> CO2 + 2 H2O")),
		mcp.WithNumber("temperature", mcp.Description("Temperature in Kelvin (default 298.15)")),
		mcp.WithBoolean("check_balance", mcp.Description("Reject equations that do not conserve every element (default true)")),
	), s.evaluateReaction)

	s.mcp.AddTool(mcp.NewTool("parse_equation",
		mcp.WithDescription("Parse an equation into species, coefficients and per-side atom counts."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Equation text")),
	), s.parseEquation)

	s.mcp.AddTool(mcp.NewTool("check_balance",
		mcp.WithDescription("Report whether an equation conserves every element and list the ones that differ."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Equation text")),
	), s.checkBalance)

	s.mcp.AddTool(mcp.NewTool("resolve_species",
		mcp.WithDescription("Look up ΔHf°, S° and Cp for one species and report which data tier supplied each value."),
		mcp.WithString("species", mcp.Required(), mcp.Description("Formula, e.g. CO2")),
	), s.resolveSpecies)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Equation Format",
			mcp.WithResourceDescription("Syntax and units accepted by the thermo tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) evaluateReaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equation, err := req.RequireString("equation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r := thermoservice.Request{
		Equation:    equation,
		Temperature: req.GetFloat("temperature", s.defaultKelvin),
	}
	if _, ok := req.GetArguments()["check_balance"]; ok {
		check := req.GetBool("check_balance", true)
		r.CheckBalance = &check
	}
	rep, err := s.svc.Evaluate(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) parseEquation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equation, err := req.RequireString("equation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eq, err := s.svc.Parse(equation)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reactants, products := eq.AtomCounts()
	return jsonResult(map[string]any{
		"canonical":      eq.String(),
		"equation":       eq,
		"species":        eq.Species(),
		"reactant_atoms": reactants,
		"product_atoms":  products,
	})
}

func (s *Server) checkBalance(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equation, err := req.RequireString("equation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eq, err := s.svc.CheckBalance(equation)
	var ie *apperr.ImbalanceError
	switch {
	case err == nil:
		return jsonResult(map[string]any{"canonical": eq.String(), "balanced": true})
	case errors.As(err, &ie):
		return jsonResult(map[string]any{"canonical": eq.String(), "balanced": false, "elements": ie.Elements})
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
}

func (s *Server) resolveSpecies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("species")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Resolve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(id + ": " + err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     EquationFormatContract,
		},
	}, nil
}
