package payload

import (
	"encoding/json"
	"fmt"
	"time"
)

// WidgetType represents dashboard widget types
type WidgetType string

const (
	WidgetTypeChart    WidgetType = "chart"
	WidgetTypeMetric   WidgetType = "metric"
	WidgetTypeTable    WidgetType = "table"
	WidgetTypeGauge    WidgetType = "gauge"
	WidgetTypeMap      WidgetType = "map"
	WidgetTypeTimeline WidgetType = "timeline"
)

// Dashboard is a saved analytics dashboard as returned by the dashboards API
type Dashboard struct {
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	IsPublic        bool      `json:"is_public"`
	IsDefault       bool      `json:"is_default"`
	RefreshInterval int       `json:"refresh_interval"`
	Widgets         []Widget  `json:"widgets,omitempty"`
	KPIs            []KPI     `json:"kpis,omitempty"`
}

// Widget is a single dashboard widget
type Widget struct {
	ID     any        `json:"id"`
	Type   WidgetType `json:"type"`
	Title  string     `json:"title"`
	Config any        `json:"config,omitempty"`
}

// KPI is a key performance indicator pinned to a dashboard
type KPI struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	CurrentValue *float64 `json:"current_value,omitempty"`
	TargetValue  *float64 `json:"target_value,omitempty"`
	Trend        string   `json:"trend,omitempty"`
}

// DecodeDashboard decodes a dashboard JSON document
func DecodeDashboard(data []byte) (Dashboard, error) {
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return Dashboard{}, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return d, nil
}
