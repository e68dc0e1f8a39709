package app

import (
	"context"
	"errors"

	"school-meal/internal/meal"
	"school-meal/internal/metrics"
	"school-meal/internal/neis"
)

// Classify names the outcome of a fetch for the diagnostics store.
func Classify(s meal.State, err error) string {
	if err == nil {
		if s.Kind() == meal.KindNoMeal {
			return metrics.OutcomeNoMeal
		}
		return metrics.OutcomeMeal
	}

	var te *neis.TransportError
	var pe *neis.ParseError
	var nf *neis.NotFoundError
	switch {
	case errors.As(err, &te):
		return metrics.OutcomeTransportError
	case errors.As(err, &pe):
		return metrics.OutcomeParseError
	case errors.As(err, &nf):
		return metrics.OutcomeNotFound
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCancelled
	}
	return metrics.OutcomeNetworkError
}

func statusOf(err error) int {
	var te *neis.TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
