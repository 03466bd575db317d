// ABOUTME: MCP resource implementations for gymbot statistics.
// ABOUTME: Provides gymbot://records and gymbot://week for the default user.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymbot/internal/report"
)

const (
	recordsURI = "gymbot://records"
	weekURI    = "gymbot://week"
)

func (s *Server) registerResources() {
	// gymbot://records - personal records of the default user
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recordsURI,
		Name:        "Personal Records",
		Description: "Heaviest weight per exercise for the configured user",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	// gymbot://week - this week's summary with groups ranked by volume
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         weekURI,
		Name:        "This Week",
		Description: "Current UTC week summary for the configured user",
		MIMEType:    "application/json",
	}, s.handleWeekResource)
}

// Resource handlers

func (s *Server) handleRecordsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.user(0)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, userID)
	if err != nil {
		return nil, err
	}
	return jsonResource(recordsURI, map[string]interface{}{
		"user_id": userID,
		"records": records.Records,
		"count":   len(records.Records),
	})
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.user(0)
	if err != nil {
		return nil, err
	}
	sum, err := s.summary(ctx, userID, string(report.KindWeek), report.Week(s.now()))
	if err != nil {
		return nil, err
	}
	return jsonResource(weekURI, map[string]interface{}{
		"generated_at": s.now().UTC().Format(time.RFC3339),
		"user_id":      userID,
		"summary":      sum,
		"groups":       sortedGroups(sum.GroupVolumes),
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// sortedGroups lists group volumes heaviest first, for resource rendering.
func sortedGroups(volumes map[string]float64) []groupVolume {
	out := make([]groupVolume, 0, len(volumes))
	for g, v := range volumes {
		out = append(out, groupVolume{Group: g, Volume: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Group < out[j].Group
	})
	return out
}

type groupVolume struct {
	Group  string  `json:"group"`
	Volume float64 `json:"volume"`
}
