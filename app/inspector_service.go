package app

import (
	"context"
	"log"
	"strings"

	"autoficate/adapters/excel"
	domaincolor "autoficate/domain/color"
	"autoficate/internal/cache"
	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

// HeadingUpdate carries the item heading form fields. Color arrives in
// the picker's channel order and is converted before storage.
type HeadingUpdate struct {
	Heading   string
	PositionX int
	PositionY int
	FontSize  int
	FontName  string
	Color     string
}

// InspectorState is what the inspector panel renders: the heading list,
// the cached value window of the current heading, and whether that
// window covers the whole list.
type InspectorState struct {
	Headings      []string
	Window        []string
	FullAvailable bool
}

type InspectorService struct {
	sets  ports.ItemSetRepository
	cache *cache.Inspector
}

func NewInspectorService(sets ports.ItemSetRepository, cache *cache.Inspector) *InspectorService {
	return &InspectorService{sets: sets, cache: cache}
}

// AddBlankHeading creates the unnamed heading, or returns the existing
// one: a user never holds two blank headings at once.
func (s *InspectorService) AddBlankHeading(ctx context.Context, userCode string) (*models.ItemSet, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}

	set, err := s.sets.GetItemSet(ctx, userCode, "")
	if err == nil {
		return set, nil
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		return nil, err
	}

	set = models.NewItemSet(userCode)
	if err := s.sets.CreateItemSet(ctx, set); err != nil {
		return nil, err
	}
	if err := s.refreshHeadings(ctx, userCode); err != nil {
		return nil, err
	}
	return set, nil
}

// UpdateHeading applies the item form to the current heading. The row
// is resolved in order: the session's current heading, then the name
// the form carries, then a fresh blank row when the current heading is
// itself blank.
func (s *InspectorService) UpdateHeading(ctx context.Context, userCode, currentHeading string, upd HeadingUpdate) (*models.ItemSet, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}

	storedColor, err := domaincolor.ToStorage(upd.Color)
	if err != nil {
		return nil, errors.Validation("color must be 8 hex digits")
	}

	set, create, err := s.resolveHeading(ctx, userCode, currentHeading, upd.Heading)
	if err != nil {
		return nil, err
	}

	newHeading := strings.TrimSpace(upd.Heading)
	if newHeading != set.Heading {
		if _, err := s.sets.GetItemSet(ctx, userCode, newHeading); err == nil {
			return nil, errors.DuplicateHeading(newHeading)
		} else if !errors.IsCode(err, errors.CodeNotFound) {
			return nil, err
		}
	}

	set.Heading = newHeading
	set.PositionX = upd.PositionX
	set.PositionY = upd.PositionY
	set.FontSize = upd.FontSize
	set.FontName = upd.FontName
	set.Color = storedColor

	if create {
		err = s.sets.CreateItemSet(ctx, set)
	} else {
		err = s.sets.UpdateItemSet(ctx, set)
	}
	if err != nil {
		return nil, err
	}

	if err := s.refreshHeadings(ctx, userCode); err != nil {
		return nil, err
	}
	s.cacheWindow(userCode, set)
	return set, nil
}

func (s *InspectorService) resolveHeading(ctx context.Context, userCode, currentHeading, formHeading string) (set *models.ItemSet, create bool, err error) {
	set, err = s.sets.GetItemSet(ctx, userCode, currentHeading)
	if err == nil {
		return set, false, nil
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		return nil, false, err
	}

	if formHeading != "" {
		set, err = s.sets.GetItemSet(ctx, userCode, formHeading)
		if err == nil {
			return set, false, nil
		}
		if !errors.IsCode(err, errors.CodeNotFound) {
			return nil, false, err
		}
	}

	if currentHeading == "" {
		return models.NewItemSet(userCode), true, nil
	}
	return nil, false, errors.NotFound("the current heading is missing")
}

// LatestSet returns the newest heading, used to seed the item form
// when the session carries no current heading.
func (s *InspectorService) LatestSet(ctx context.Context, userCode string) (*models.ItemSet, error) {
	set, err := s.sets.LatestItemSet(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if _, ok := s.cache.Window(userCode, set.Heading); !ok {
		s.cacheWindow(userCode, set)
	}
	return set, nil
}

// SelectHeading makes a heading current and returns its set with the
// value window primed.
func (s *InspectorService) SelectHeading(ctx context.Context, userCode, heading string) (*models.ItemSet, error) {
	set, err := s.sets.GetItemSet(ctx, userCode, heading)
	if err != nil {
		return nil, err
	}
	if _, ok := s.cache.Window(userCode, heading); !ok {
		s.cacheWindow(userCode, set)
	}
	return set, nil
}

// RemoveHeading deletes a heading and its cached window.
func (s *InspectorService) RemoveHeading(ctx context.Context, userCode, heading string) error {
	if userCode == "" {
		return errors.SessionMissing("user_code")
	}
	if err := s.sets.DeleteItemSet(ctx, userCode, heading); err != nil {
		return err
	}
	s.cache.DeleteHeading(userCode, heading)
	return s.refreshHeadings(ctx, userCode)
}

// UpdateData replaces and extends a heading's value list. Existing
// values are only overwritten when the full list was loaded into the
// inspector; otherwise the window would silently truncate the tail.
// New values go on top or at the bottom per location.
func (s *InspectorService) UpdateData(ctx context.Context, userCode, heading string, existing, additions []string, location string) (*models.ItemSet, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}

	set, err := s.sets.GetItemSet(ctx, userCode, heading)
	if err != nil {
		return nil, err
	}

	items := []string(set.Items)
	if len(existing) > 0 && s.cache.FullAvailable(userCode, heading) {
		items = existing
	}
	if len(additions) > 0 {
		if location == "top" {
			items = append(append([]string(nil), additions...), items...)
		} else {
			items = append(items, additions...)
		}
	}

	set.Items = models.StringList(items)
	if err := s.sets.UpdateItemSet(ctx, set); err != nil {
		return nil, err
	}
	s.cacheWindow(userCode, set)
	return set, nil
}

// LoadAll pulls the complete value list into the cache so the inspector
// can edit every row.
func (s *InspectorService) LoadAll(ctx context.Context, userCode, heading string) ([]string, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}
	set, err := s.sets.GetItemSet(ctx, userCode, heading)
	if err != nil {
		return nil, err
	}
	s.cache.SetFull(userCode, heading, set.Items)
	return set.Items, nil
}

// ImportTable stores an extracted spreadsheet table as item sets, one
// per column, all or nothing. A heading that already holds data rejects
// the whole file and the existing data is kept.
func (s *InspectorService) ImportTable(ctx context.Context, userCode string, table *excel.TableData) ([]string, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}

	// Every column is validated before the first write, so a rejected
	// heading leaves the stored sets untouched.
	type staged struct {
		set    *models.ItemSet
		create bool
	}
	headings := make([]string, 0, len(table.Headings))
	pending := make([]staged, 0, len(table.Headings))
	seen := make(map[string][]string, len(table.Headings))
	for _, raw := range table.Headings {
		heading := excel.NormalizeHeading(raw)
		values := table.Columns[raw]

		if prior, ok := seen[heading]; ok {
			return nil, errors.DuplicateHeadingData(heading, prior, values)
		}

		existing, err := s.sets.GetItemSet(ctx, userCode, heading)
		switch {
		case err == nil && len(existing.Items) > 0:
			return nil, errors.DuplicateHeadingData(heading, existing.Items, values)
		case err == nil:
			existing.Items = models.StringList(values)
			pending = append(pending, staged{set: existing})
		case errors.IsCode(err, errors.CodeNotFound):
			set := models.NewItemSet(userCode)
			set.Heading = heading
			set.Items = models.StringList(values)
			pending = append(pending, staged{set: set, create: true})
		default:
			return nil, err
		}
		seen[heading] = values
		headings = append(headings, heading)
	}

	for _, p := range pending {
		var err error
		if p.create {
			err = s.sets.CreateItemSet(ctx, p.set)
		} else {
			err = s.sets.UpdateItemSet(ctx, p.set)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.ReloadCache(ctx, userCode); err != nil {
		return nil, err
	}
	log.Printf("[Inspector] imported %d columns for %s", len(headings), userCode)
	return headings, nil
}

// State assembles what the inspector panel needs, reading the cache
// first and falling back to the database.
func (s *InspectorService) State(ctx context.Context, userCode, currentHeading string) (*InspectorState, error) {
	headings, ok := s.cache.Headers(userCode)
	if !ok {
		var err error
		headings, err = s.sets.ListHeadings(ctx, userCode)
		if err != nil {
			return nil, err
		}
		s.cache.SetHeaders(userCode, headings)
	}

	state := &InspectorState{Headings: headings}
	if currentHeading == "" {
		return state, nil
	}

	window, ok := s.cache.Window(userCode, currentHeading)
	if !ok {
		set, err := s.sets.GetItemSet(ctx, userCode, currentHeading)
		if err != nil {
			if errors.IsCode(err, errors.CodeNotFound) {
				return state, nil
			}
			return nil, err
		}
		s.cacheWindow(userCode, set)
		window, _ = s.cache.Window(userCode, currentHeading)
	}
	state.Window = window
	state.FullAvailable = s.cache.FullAvailable(userCode, currentHeading)
	return state, nil
}

// ReloadCache rebuilds the heading list and every value window for a
// user from the database.
func (s *InspectorService) ReloadCache(ctx context.Context, userCode string) error {
	sets, err := s.sets.ListItemSets(ctx, userCode)
	if err != nil {
		return err
	}
	headings := make([]string, 0, len(sets))
	for _, set := range sets {
		headings = append(headings, set.Heading)
		s.cacheWindow(userCode, set)
	}
	s.cache.SetHeaders(userCode, headings)
	return nil
}

// PurgeCache drops everything cached for a user. Called on logout.
func (s *InspectorService) PurgeCache(userCode string) {
	s.cache.PurgeUser(userCode)
}

func (s *InspectorService) refreshHeadings(ctx context.Context, userCode string) error {
	headings, err := s.sets.ListHeadings(ctx, userCode)
	if err != nil {
		return err
	}
	s.cache.SetHeaders(userCode, headings)
	return nil
}

func (s *InspectorService) cacheWindow(userCode string, set *models.ItemSet) {
	s.cache.SetWindow(userCode, set.Heading, set.Items, len(set.Items) <= s.cache.Limit())
}
