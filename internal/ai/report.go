package ai

import (
	"context"

	"vitrine/pkg/models"
)

var productInsightSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"productName": {Type: TypeString},
		"insight":     {Type: TypeString},
	},
	Required: []string{"productName", "insight"},
	Ordering: []string{"productName", "insight"},
}

var adminReportSchema = &Schema{
	Name: "admin_report",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"summary": {Type: TypeString, Description: "Overall performance in a short paragraph"},
		"topPerforming": {
			Type: TypeArray, Items: productInsightSchema,
			MinItems: int64Ptr(3), MaxItems: int64Ptr(3),
		},
		"underperforming": {
			Type: TypeArray, Items: productInsightSchema,
			MinItems: int64Ptr(3), MaxItems: int64Ptr(3),
		},
		"categoryPerformance": {
			Type: TypeArray,
			Items: &Schema{
				Type: TypeObject,
				Properties: map[string]*Schema{
					"category":    {Type: TypeString},
					"performance": {Type: TypeString},
				},
				Required: []string{"category", "performance"},
				Ordering: []string{"category", "performance"},
			},
		},
		"suggestions": {
			Type: TypeArray, Items: &Schema{Type: TypeString},
			MinItems: int64Ptr(3), MaxItems: int64Ptr(3),
		},
	},
	Required: []string{"summary", "topPerforming", "underperforming", "categoryPerformance", "suggestions"},
	Ordering: []string{"summary", "topPerforming", "underperforming", "categoryPerformance", "suggestions"},
}

// ProductInsight is a report line about one product
type ProductInsight struct {
	ProductName string `json:"productName" validate:"required"`
	Insight     string `json:"insight" validate:"required"`
}

// CategoryPerformance summarizes one category
type CategoryPerformance struct {
	Category    string `json:"category" validate:"required"`
	Performance string `json:"performance" validate:"required"`
}

// AdminReport is the store performance report. The three fixed-size sections always
// hold exactly three entries.
type AdminReport struct {
	Summary             string                `json:"summary" validate:"required"`
	TopPerforming       []ProductInsight      `json:"topPerforming" validate:"len=3,dive"`
	Underperforming     []ProductInsight      `json:"underperforming" validate:"len=3,dive"`
	CategoryPerformance []CategoryPerformance `json:"categoryPerformance" validate:"required,dive"`
	Suggestions         []string              `json:"suggestions" validate:"len=3,dive,required"`
}

// AdminReportRequest carries the sales figures of a period
type AdminReportRequest struct {
	Period      string                      `json:"period" validate:"required"`
	Performance []models.ProductPerformance `json:"performance" validate:"required,min=1"`
}

// AdminReport writes the performance report. It has no fallback: every failure is
// returned as a *FlowError.
func (f *Flows) AdminReport(ctx context.Context, req AdminReportRequest) (*AdminReport, error) {
	ctx, span := f.start(ctx, FlowAdminReport)
	defer span.End()

	if err := validateInput(FlowAdminReport, req); err != nil {
		return nil, f.fail(ctx, FlowAdminReport, err)
	}

	report, err := generateJSON[AdminReport](ctx, f, FlowAdminReport, TemplateAdminReport, req, adminReportSchema)
	if err != nil {
		return nil, f.fail(ctx, FlowAdminReport, err)
	}
	return report, nil
}
