package action

import (
	"context"
	"sync"

	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/policy"
	"github.com/balcao/balcao/internal/store"
)

func (c *Catalog) settingActions(deps Deps, settings store.Store[model.Setting]) {
	// Serializes upserts so concurrent first saves create a single record.
	var upsertMu sync.Mutex

	c.GetCalendar = New(deps, policy.GetCalendar, emptySchema,
		func(ctx context.Context, _ model.Claims, _ Empty) (model.Setting, error) {
			current, found, err := findSetting(ctx, settings, model.SettingCalendar)
			if err != nil {
				return model.Setting{}, err
			}
			if !found {
				return model.DefaultCalendar(), nil
			}
			return current, nil
		})

	c.UpdateCalendar = New(deps, policy.UpdateCalendar, calendarSchema,
		func(ctx context.Context, claims model.Claims, in CalendarInput) (model.Setting, error) {
			upsertMu.Lock()
			defer upsertMu.Unlock()

			current, found, err := findSetting(ctx, settings, model.SettingCalendar)
			if err != nil {
				return model.Setting{}, err
			}
			if !found {
				return settings.Add(ctx, claims.SubjectID, model.Setting{
					Key:             model.SettingCalendar,
					HighlightedDays: in.HighlightedDays,
					ClosedWeekdays:  in.ClosedWeekdays,
				})
			}

			current.HighlightedDays = in.HighlightedDays
			current.ClosedWeekdays = in.ClosedWeekdays
			return settings.Update(ctx, current)
		}, PathSettings, PathCalendar)
}

func findSetting(ctx context.Context, settings store.Store[model.Setting], key string) (model.Setting, bool, error) {
	all, err := settings.List(ctx)
	if err != nil {
		return model.Setting{}, false, err
	}
	for _, s := range all {
		if s.Key == key {
			return s, true, nil
		}
	}
	return model.Setting{}, false, nil
}
