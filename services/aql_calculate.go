package services

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the request fields before any table lookup.
func (r CalculationRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.InspectionType, validation.Required, validation.In(InspectionGeneral, InspectionSpecial)),
		validation.Field(&r.Level, validation.Required),
		validation.Field(&r.InspectedQty, validation.Required, validation.Min(0.0).Exclusive().Error("must be a positive number")),
		validation.Field(&r.AQLLevel, validation.Required, validation.Min(0.0).Exclusive().Error("must be a positive number")),
	)
	if err != nil {
		return toValidationError(err)
	}
	if !ValidLevel(r.InspectionType, r.Level) {
		return &ValidationError{
			Field:   "Level",
			Message: fmt.Sprintf("level %q is not a %s inspection level", r.Level, r.InspectionType),
		}
	}
	return nil
}

// Calculate resolves the sample letter, sample size and Ac/Re thresholds for
// a lot of req.InspectedQty units. Any lookup miss is a *NotFoundError and no
// partial result is returned.
func Calculate(tables AQLTables, req CalculationRequest) (CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return CalculationResult{}, err
	}

	letter, err := LookupSampleLetter(tables.SampleLetters, req.InspectionType, req.Level, req.InspectedQty)
	if err != nil {
		return CalculationResult{}, err
	}

	plan, err := lookupPlan(tables.Plans, letter)
	if err != nil {
		return CalculationResult{}, err
	}

	entry, ok := plan.Entry(req.AQLLevel)
	if !ok {
		return CalculationResult{}, &NotFoundError{
			What: "AQL level",
			Key:  fmt.Sprintf("%s for sample letter %s", FormatAQLLevel(req.AQLLevel), letter),
		}
	}

	return CalculationResult{
		SampleLetter:   letter,
		SampleSize:     plan.SampleSize,
		AQLLevel:       entry.AQLLevel,
		Ac:             entry.Ac,
		Re:             entry.Re,
		InspectionType: req.InspectionType,
		Level:          req.Level,
		InspectedQty:   req.InspectedQty,
	}, nil
}

// LookupSampleLetter finds the batch range containing qty for the given
// inspection type and level. Ranges are [Min, next Min) in ascending Min
// order and the last one is unbounded.
func LookupSampleLetter(rows []SampleSizeLetterRow, inspectionType InspectionType, level InspectionLevel, qty float64) (string, error) {
	var ranges []BatchRange
	found := false
	for _, r := range rows {
		if r.InspectionType == inspectionType && r.Level == level {
			ranges = append([]BatchRange(nil), r.BatchRanges...)
			found = true
			break
		}
	}
	if !found {
		return "", &NotFoundError{What: "code letter row", Key: fmt.Sprintf("%s %s", inspectionType, level)}
	}

	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })

	letter := ""
	for _, br := range ranges {
		if br.Min > qty {
			break
		}
		letter = br.SampleLetter
	}
	if letter == "" {
		return "", &NotFoundError{
			What: "batch range",
			Key:  fmt.Sprintf("quantity %s for %s %s", FormatCount(qty), inspectionType, level),
		}
	}
	return letter, nil
}

func lookupPlan(plans []SamplingPlanRow, letter string) (SamplingPlanRow, error) {
	for _, p := range plans {
		if p.SampleLetter == letter {
			return p, nil
		}
	}
	return SamplingPlanRow{}, &NotFoundError{What: "sample letter", Key: letter}
}

// toValidationError flattens ozzo validation errors into a *ValidationError
// naming the first offending field.
func toValidationError(err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if errs[k] != nil {
				return &ValidationError{Field: k, Message: errs[k].Error()}
			}
		}
	}
	return &ValidationError{Message: err.Error()}
}
