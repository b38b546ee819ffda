package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/listiq/internal/domain"
)

// EligibilityService decides whether units may accept tenant applications.
// Decisions are pure functions of current listing and lease state: repeated
// calls on unchanged state return identical results, and the bulk check is
// element-wise identical to individual calls.
type EligibilityService struct {
	listings domain.ListingRepository
	units    domain.UnitRepository
}

// NewEligibilityService creates an eligibility gate over the given repositories.
func NewEligibilityService(listings domain.ListingRepository, units domain.UnitRepository) *EligibilityService {
	return &EligibilityService{listings: listings, units: units}
}

// CheckApplicationEligibility evaluates one unit. Business outcomes (unit
// missing, leased, unlisted) come back as ineligible results with a reason;
// only infrastructure failures surface as errors.
func (s *EligibilityService) CheckApplicationEligibility(ctx context.Context, unitID string) (domain.Eligibility, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, domain.ErrUnitNotFound) {
			return domain.Eligibility{
				UnitID:        unitID,
				IsEligible:    false,
				ListingStatus: domain.StatusPrivate,
				Reason:        "unit not found",
			}, nil
		}
		return domain.Eligibility{}, fmt.Errorf("loading unit: %w", err)
	}

	lease, err := s.units.ActiveLease(ctx, unitID)
	if err != nil {
		return domain.Eligibility{}, fmt.Errorf("checking lease: %w", err)
	}

	listing, err := s.listings.GetByUnit(ctx, unitID)
	if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
		return domain.Eligibility{}, fmt.Errorf("loading listing: %w", err)
	}

	status := domain.StatusPrivate
	if err == nil {
		status = listing.Status
	}

	// An active lease blocks applications regardless of listing status.
	if lease != nil {
		return domain.Eligibility{
			UnitID:        unit.ID,
			IsEligible:    false,
			ListingStatus: status,
			Reason:        "unit has an active lease",
		}, nil
	}

	if errors.Is(err, domain.ErrListingNotFound) {
		return domain.Eligibility{
			UnitID:        unit.ID,
			IsEligible:    false,
			ListingStatus: domain.StatusPrivate,
			Reason:        "unit is not currently listed",
		}, nil
	}

	if status != domain.StatusActive {
		return domain.Eligibility{
			UnitID:        unit.ID,
			IsEligible:    false,
			ListingStatus: status,
			Reason:        fmt.Sprintf("listing status is %s", status),
		}, nil
	}

	return domain.Eligibility{
		UnitID:        unit.ID,
		IsEligible:    true,
		ListingStatus: status,
		Reason:        "unit is listed and available",
	}, nil
}

// CheckMultipleUnitsEligibility evaluates many units by running the single
// check per element, preserving input order.
func (s *EligibilityService) CheckMultipleUnitsEligibility(ctx context.Context, unitIDs []string) ([]domain.Eligibility, error) {
	out := make([]domain.Eligibility, 0, len(unitIDs))
	for _, id := range unitIDs {
		e, err := s.CheckApplicationEligibility(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
