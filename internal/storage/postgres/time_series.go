package postgres

import (
	"context"
	"fmt"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

type seriesSource struct {
	table  string
	column string
}

// seriesSources whitelists the identifiers interpolated into timeSeriesQuery
var seriesSources = map[models.Series]seriesSource{
	models.SeriesVisits:       {table: "site_visits", column: "visited_at"},
	models.SeriesMessages:     {table: "messages", column: "created_at"},
	models.SeriesProfileViews: {table: "profile_views", column: "visited_at"},
	models.SeriesDates:        {table: "dates", column: "created_at"},
	models.SeriesSessions:     {table: "user_sessions", column: "started_at"},
}

func timeSeriesQuery(src seriesSource) string {
	return fmt.Sprintf(`
		SELECT TO_CHAR(DATE(%[2]s), 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM %[1]s
		WHERE %[2]s >= NOW() - make_interval(days => $1)
		GROUP BY DATE(%[2]s)
		ORDER BY DATE(%[2]s) ASC
	`, src.table, src.column)
}

// TimeSeries returns per-day counts for the last days days
func (s *Store) TimeSeries(ctx context.Context, series models.Series, days int) ([]models.DailyCount, error) {
	src, ok := seriesSources[series]
	if !ok {
		return nil, storage.ErrInvalidSeries
	}

	rows, err := s.pool.Query(ctx, timeSeriesQuery(src), days)
	if err != nil {
		return nil, fmt.Errorf("%s over time: %w", series, err)
	}
	defer rows.Close()

	points := []models.DailyCount{}
	for rows.Next() {
		var p models.DailyCount
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, fmt.Errorf("scan %s point: %w", series, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
