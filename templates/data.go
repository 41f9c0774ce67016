package templates

import (
	"strconv"

	"fincheck/services"
)

// ActiveBuyer is the buyer selected in the header dropdown.
type ActiveBuyer struct {
	ID   string
	Name string
}

// BuyerSelectorItem is one entry of the header buyer dropdown.
type BuyerSelectorItem struct {
	ID       string
	Name     string
	IsActive bool
}

// HeaderData carries the shell header state built by the middleware.
type HeaderData struct {
	ActiveBuyer *ActiveBuyer
	Buyers      []BuyerSelectorItem
}

// AQLPageData is everything the AQL console page renders.
type AQLPageData struct {
	CodeLetters services.CodeLetterMatrix
	Plans       services.SamplingPlanMatrix
	// PlanError is shown instead of the plan matrix when it cannot be built.
	PlanError string

	BuyerConfigs []services.BuyerAQLConfig
	Availability *services.StatusAvailability

	DefaultInspectionType string
	DefaultLevel          string
}

// acText and reText format one plan matrix cell, "-" when the row lacks level.
func acText(r services.SamplingPlanRow, level float64) string {
	if e, ok := r.Entry(level); ok {
		return strconv.Itoa(e.Ac)
	}
	return services.MissingLetter
}

func reText(r services.SamplingPlanRow, level float64) string {
	if e, ok := r.Entry(level); ok {
		return strconv.Itoa(e.Re)
	}
	return services.MissingLetter
}
