package databricks

import (
	"fmt"
	"strings"
)

const (
	accuWeatherTable        = "samples.accuweather.daily_weather_data"
	accuWeatherDefaultLimit = 100
	accuWeatherMaxLimit     = 500
)

// AccuWeatherQueryOptions filter the shared daily weather sample data set.
type AccuWeatherQueryOptions struct {
	City      string
	StartDate string // ISO date
	EndDate   string // ISO date
	Limit     int
}

// QueryAccuWeather runs a guarded SELECT over the shared weather data set.
func (c *Client) QueryAccuWeather(opts AccuWeatherQueryOptions) (*QueryResult, error) {
	return c.ExecuteStatement(buildAccuWeatherSql(opts))
}

func buildAccuWeatherSql(opts AccuWeatherQueryOptions) string {
	where := make([]string, 0, 3)
	if opts.City != "" {
		where = append(where, fmt.Sprintf("city = '%v'", strings.Replace(opts.City, "'", "''", -1)))
	}
	if opts.StartDate != "" {
		where = append(where, fmt.Sprintf("date >= DATE '%v'", opts.StartDate))
	}
	if opts.EndDate != "" {
		where = append(where, fmt.Sprintf("date <= DATE '%v'", opts.EndDate))
	}
	whereSql := ""
	if len(where) > 0 {
		whereSql = " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = accuWeatherDefaultLimit
	} else if limit > accuWeatherMaxLimit {
		limit = accuWeatherMaxLimit
	}
	return fmt.Sprintf("SELECT * FROM %v%v LIMIT %v", accuWeatherTable, whereSql, limit)
}
