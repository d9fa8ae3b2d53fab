package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/geocode"
)

var (
	// ErrNoLocator is returned when location lookups are not configured.
	ErrNoLocator = errors.New("location lookup is not configured")
	// ErrRoleFirst is returned when a lookup is attempted before a role is chosen.
	ErrRoleFirst = errors.New("select a role before looking up a location")
	// ErrNoAddress is returned when the coordinates resolve to no address.
	ErrNoAddress = errors.New("No address found. Please click closer to a street or building.")
	// ErrUnparseable is returned when the location analysis is unreadable.
	ErrUnparseable = errors.New("The location data could not be parsed. Please ensure it's copied correctly and try again.")
)

// LocationRequest selects a place by address or by coordinates.
// PastedText is optional supplementary data.
type LocationRequest struct {
	Address    string   `json:"address,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	PastedText string   `json:"pastedText,omitempty"`
}

// NotFoundError is returned when an address cannot be geocoded.
type NotFoundError struct {
	Address string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find location for %q. Please try a different address.", e.Address)
}

// LookupLocation resolves the requested place to a street address, sets it
// as the location and merges the pre-analysis into the form.
func (c *Controller) LookupLocation(ctx context.Context, req LocationRequest) (*geocode.LocationReport, error) {
	if c.locator == nil {
		return nil, ErrNoLocator
	}
	c.mu.Lock()
	hasRole := c.form.Role != ""
	c.mu.Unlock()
	if !hasRole {
		return nil, ErrRoleFirst
	}

	var coords geocode.Coordinates
	switch {
	case req.Lat != nil && req.Lon != nil:
		coords = geocode.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	case strings.TrimSpace(req.Address) != "":
		addr := strings.TrimSpace(req.Address)
		found, err := c.locator.Geocode(ctx, addr)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, &NotFoundError{Address: addr}
		}
		coords = *found
	default:
		return nil, errors.New("an address or coordinates are required")
	}

	address, err := c.locator.Reverse(ctx, coords)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, ErrNoAddress
	}
	if err := c.SetField("location", address); err != nil {
		return nil, err
	}

	report, err := c.locator.Analyze(ctx, coords, address, req.PastedText)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrUnparseable
	}
	patch, auto, err := report.Patch()
	if err != nil {
		return nil, err
	}
	if err := c.Merge(patch, auto); err != nil {
		return nil, fmt.Errorf("applying location data: %w", err)
	}
	c.logger.Info("location analyzed", "address", address, "auto_filled", len(auto))
	return report, nil
}
