package web

import (
	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
)

type assignmentQuery struct {
	FormName  string `json:"formName" validate:"required"`
	FieldName string `json:"fieldName" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

type trackEventRequest struct {
	TestID    string  `json:"testId" validate:"required"`
	VariantID string  `json:"variantId" validate:"required"`
	SessionID string  `json:"sessionId" validate:"required"`
	EventType string  `json:"eventType" validate:"required,oneof=impression focus blur input validation_error form_submit form_success form_error"`
	EventData *string `json:"eventData,omitempty"`
}

type variantRequest struct {
	Name          string  `json:"name" validate:"required"`
	IsControl     bool    `json:"isControl"`
	TrafficWeight int     `json:"trafficWeight" validate:"min=0,max=100"`
	Label         *string `json:"label,omitempty"`
	Placeholder   *string `json:"placeholder,omitempty"`
	Required      bool    `json:"required"`
	HelperText    *string `json:"helperText,omitempty"`
}

type createTestRequest struct {
	Name              string           `json:"name" validate:"required"`
	Description       *string          `json:"description,omitempty"`
	FormName          string           `json:"formName" validate:"required"`
	FieldName         string           `json:"fieldName" validate:"required"`
	TrafficAllocation *int             `json:"trafficAllocation,omitempty" validate:"omitempty,min=0,max=100"`
	Status            string           `json:"status,omitempty" validate:"omitempty,oneof=draft active paused completed"`
	Variants          []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (req createTestRequest) toNewTest() domain.NewTest {
	allocation := 100
	if req.TrafficAllocation != nil {
		allocation = *req.TrafficAllocation
	}
	n := domain.NewTest{
		Name:              req.Name,
		Description:       req.Description,
		FormName:          req.FormName,
		FieldName:         req.FieldName,
		TrafficAllocation: allocation,
		Status:            domain.TestStatus(req.Status),
		Variants:          make([]domain.NewVariant, len(req.Variants)),
	}
	for i, v := range req.Variants {
		n.Variants[i] = domain.NewVariant{
			Name:          v.Name,
			IsControl:     v.IsControl,
			TrafficWeight: v.TrafficWeight,
			Overrides: domain.FieldOverrides{
				Label:       v.Label,
				Placeholder: v.Placeholder,
				Required:    v.Required,
				HelperText:  v.HelperText,
			},
		}
	}
	return n
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active paused completed"`
}

type successResponse struct {
	Success bool   `json:"success"`
	TestID  string `json:"testId,omitempty"`
}

type variantResponse struct {
	ID            string  `json:"id"`
	TestID        string  `json:"testId"`
	Name          string  `json:"name"`
	IsControl     bool    `json:"isControl"`
	TrafficWeight int     `json:"trafficWeight"`
	Label         *string `json:"label"`
	Placeholder   *string `json:"placeholder"`
	Required      bool    `json:"required"`
	HelperText    *string `json:"helperText"`
}

func toVariantResponse(v domain.Variant) variantResponse {
	return variantResponse{
		ID:            v.ID,
		TestID:        v.TestID,
		Name:          v.Name,
		IsControl:     v.IsControl,
		TrafficWeight: v.TrafficWeight,
		Label:         v.Overrides.Label,
		Placeholder:   v.Overrides.Placeholder,
		Required:      v.Overrides.Required,
		HelperText:    v.Overrides.HelperText,
	}
}

type assignmentResponse struct {
	HasTest bool             `json:"hasTest"`
	TestID  string           `json:"testId,omitempty"`
	Variant *variantResponse `json:"variant"`
}

func toAssignmentResponse(a abtest.VariantAssignment) assignmentResponse {
	resp := assignmentResponse{HasTest: a.HasTest, TestID: a.TestID}
	if a.HasTest && a.Variant != nil {
		v := toVariantResponse(*a.Variant)
		resp.Variant = &v
	}
	return resp
}

type testResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	FormName          string  `json:"formName"`
	FieldName         string  `json:"fieldName"`
	Status            string  `json:"status"`
	TrafficAllocation int     `json:"trafficAllocation"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

func toTestResponse(t domain.Test) testResponse {
	return testResponse{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		FormName:          t.FormName,
		FieldName:         t.FieldName,
		Status:            string(t.Status),
		TrafficAllocation: t.TrafficAllocation,
		CreatedAt:         util.FormatTimestamp(t.CreatedAt),
		UpdatedAt:         util.FormatTimestamp(t.UpdatedAt),
	}
}

type testDetailsResponse struct {
	Test     testResponse      `json:"test"`
	Variants []variantResponse `json:"variants"`
}

type variantStatsResponse struct {
	VariantID      string  `json:"variantId"`
	VariantName    string  `json:"variantName"`
	IsControl      bool    `json:"isControl"`
	TrafficWeight  int     `json:"trafficWeight"`
	Impressions    int64   `json:"impressions"`
	Focuses        int64   `json:"focuses"`
	Errors         int64   `json:"errors"`
	Submissions    int64   `json:"submissions"`
	Conversions    int64   `json:"conversions"`
	EngagementRate float64 `json:"engagementRate"`
	ErrorRate      float64 `json:"errorRate"`
	ConversionRate float64 `json:"conversionRate"`
}

type comparisonResponse struct {
	Control                string   `json:"control"`
	ControlID              string   `json:"controlId"`
	Treatment              string   `json:"treatment"`
	TreatmentID            string   `json:"treatmentId"`
	ZScore                 float64  `json:"zScore"`
	PValue                 float64  `json:"pValue"`
	Significant            bool     `json:"significant"`
	Improvement            *float64 `json:"improvement"`
	ControlZeroConversions bool     `json:"controlZeroConversions"`
}

type statsResponse struct {
	Test        testResponse           `json:"test"`
	Variants    []variantStatsResponse `json:"variants"`
	Comparisons []comparisonResponse   `json:"comparisons"`
}

func toStatsResponse(st *domain.TestStatistics) statsResponse {
	resp := statsResponse{
		Test:        toTestResponse(st.Test),
		Variants:    make([]variantStatsResponse, len(st.Variants)),
		Comparisons: make([]comparisonResponse, len(st.Comparisons)),
	}
	for i, v := range st.Variants {
		resp.Variants[i] = variantStatsResponse{
			VariantID:      v.VariantID,
			VariantName:    v.VariantName,
			IsControl:      v.IsControl,
			TrafficWeight:  v.TrafficWeight,
			Impressions:    v.Impressions,
			Focuses:        v.Focuses,
			Errors:         v.Errors,
			Submissions:    v.Submissions,
			Conversions:    v.Conversions,
			EngagementRate: v.EngagementRate,
			ErrorRate:      v.ErrorRate,
			ConversionRate: v.ConversionRate,
		}
	}
	for i, c := range st.Comparisons {
		resp.Comparisons[i] = comparisonResponse{
			Control:                c.ControlName,
			ControlID:              c.ControlID,
			Treatment:              c.TreatmentName,
			TreatmentID:            c.TreatmentID,
			ZScore:                 c.ZScore,
			PValue:                 c.PValue,
			Significant:            c.Significant,
			Improvement:            c.Improvement,
			ControlZeroConversions: c.ControlZeroConversions,
		}
	}
	return resp
}
