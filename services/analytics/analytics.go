package analytics

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"roaddarts/utils"

	"go.uber.org/zap"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

var (
	// ErrUnknownReport is returned for report names not in Reports.
	ErrUnknownReport = errors.New("unknown report")
	// ErrNotConfigured is returned when no GA4 property or credentials are set.
	ErrNotConfigured = errors.New("analytics not configured")
)

// Report describes one GA4 query and how its rows are keyed in the response.
// Columns name the dimensions first, then the metrics, in request order.
type Report struct {
	Request *analyticsdata.RunReportRequest
	Columns []string
	// Single reports return only the first row as an object.
	Single bool
}

func dateRange(start string) []*analyticsdata.DateRange {
	return []*analyticsdata.DateRange{{StartDate: start, EndDate: "today"}}
}

func dims(names ...string) []*analyticsdata.Dimension {
	out := make([]*analyticsdata.Dimension, len(names))
	for i, n := range names {
		out[i] = &analyticsdata.Dimension{Name: n}
	}
	return out
}

func metrics(names ...string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, len(names))
	for i, n := range names {
		out[i] = &analyticsdata.Metric{Name: n}
	}
	return out
}

func byMetricDesc(name string) []*analyticsdata.OrderBy {
	return []*analyticsdata.OrderBy{{Metric: &analyticsdata.MetricOrderBy{MetricName: name}, Desc: true}}
}

// Reports are keyed by the path segment used in /api/analytics/:report.
var Reports = map[string]Report{
	"page-views": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("7daysAgo"),
			Dimensions: dims("pagePath"),
			Metrics:    metrics("screenPageViews"),
		},
		Columns: []string{"path", "views"},
	},
	"top-events": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("7daysAgo"),
			Dimensions: dims("eventName"),
			Metrics:    metrics("eventCount"),
			OrderBys:   byMetricDesc("eventCount"),
			Limit:      10,
		},
		Columns: []string{"event", "count"},
	},
	"active-users": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: []*analyticsdata.DateRange{{StartDate: "today", EndDate: "today"}},
			Metrics:    metrics("activeUsers"),
		},
		Columns: []string{"activeUsers"},
		Single:  true,
	},
	"users-by-country": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("7daysAgo"),
			Dimensions: dims("country"),
			Metrics:    metrics("activeUsers"),
			OrderBys:   byMetricDesc("activeUsers"),
			Limit:      5,
		},
		Columns: []string{"country", "users"},
	},
	"kpis": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("28daysAgo"),
			Metrics:    metrics("activeUsers", "newUsers", "eventCount", "averageSessionDuration"),
		},
		Columns: []string{"activeUsers", "newUsers", "eventCount", "avgSessionDuration"},
		Single:  true,
	},
	"top-pages": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("28daysAgo"),
			Dimensions: dims("pageTitle"),
			Metrics:    metrics("screenPageViews", "activeUsers", "eventCount", "bounceRate"),
			OrderBys:   byMetricDesc("screenPageViews"),
			Limit:      10,
		},
		Columns: []string{"title", "views", "activeUsers", "eventCount", "bounceRate"},
	},
	"traffic-sources": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("28daysAgo"),
			Dimensions: dims("firstUserSourceMedium"),
			Metrics:    metrics("activeUsers"),
			OrderBys:   byMetricDesc("activeUsers"),
			Limit:      10,
		},
		Columns: []string{"source", "users"},
	},
	"users-by-city": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("28daysAgo"),
			Dimensions: dims("city"),
			Metrics:    metrics("activeUsers"),
			OrderBys:   byMetricDesc("activeUsers"),
			Limit:      10,
		},
		Columns: []string{"city", "users"},
	},
	"new-vs-returning": {
		Request: &analyticsdata.RunReportRequest{
			DateRanges: dateRange("28daysAgo"),
			Dimensions: dims("newVsReturning"),
			Metrics:    metrics("totalUsers"),
		},
		Columns: []string{"type", "users"},
	},
}

// ReportRunner executes a raw GA4 report request.
type ReportRunner interface {
	RunReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
}

type AnalyticsService interface {
	Run(ctx context.Context, name string) (interface{}, error)
}

// DefaultAnalyticsService resolves named reports and flattens their rows.
type DefaultAnalyticsService struct {
	Runner ReportRunner
}

func (s *DefaultAnalyticsService) Run(ctx context.Context, name string) (interface{}, error) {
	report, ok := Reports[name]
	if !ok {
		return nil, ErrUnknownReport
	}
	if s.Runner == nil {
		return nil, ErrNotConfigured
	}
	resp, err := s.Runner.RunReport(ctx, report.Request)
	if err != nil {
		utils.GetLogger().Error("Analytics report failed", zap.String("report", name), zap.Error(err))
		return nil, fmt.Errorf("failed to run %s report: %w", name, err)
	}
	rows := mapRows(resp, report.Columns)
	if report.Single {
		if len(rows) == 0 {
			return map[string]string{}, nil
		}
		return rows[0], nil
	}
	return rows, nil
}

// mapRows keys each row's dimension then metric values by the column names.
func mapRows(resp *analyticsdata.RunReportResponse, columns []string) []map[string]string {
	out := []map[string]string{}
	if resp == nil {
		return out
	}
	for _, row := range resp.Rows {
		values := make([]string, 0, len(row.DimensionValues)+len(row.MetricValues))
		for _, d := range row.DimensionValues {
			values = append(values, d.Value)
		}
		for _, m := range row.MetricValues {
			values = append(values, m.Value)
		}
		item := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(values) {
				item[col] = values[i]
			}
		}
		out = append(out, item)
	}
	return out
}

// GA4Runner runs reports for one GA4 property.
type GA4Runner struct {
	svc      *analyticsdata.Service
	property string
}

// NewGA4Runner builds a runner from a base64-encoded service account JSON.
func NewGA4Runner(ctx context.Context, propertyID, credentialsB64 string) (*GA4Runner, error) {
	if propertyID == "" || credentialsB64 == "" {
		return nil, ErrNotConfigured
	}
	creds, err := base64.StdEncoding.DecodeString(credentialsB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode analytics credentials: %w", err)
	}
	svc, err := analyticsdata.NewService(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}
	return &GA4Runner{svc: svc, property: "properties/" + propertyID}, nil
}

func (r *GA4Runner) RunReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return r.svc.Properties.RunReport(r.property, req).Context(ctx).Do()
}
