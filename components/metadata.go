package components

// TimeOfDay is the day/night phase.
type TimeOfDay uint8

const (
	Day TimeOfDay = iota
	Night
)

// Weather is the current weather condition.
type Weather uint8

const (
	Clear Weather = iota
	Cloudy
	Rainy
)

// Season cycles Summer -> Autumn -> Winter -> Spring.
type Season uint8

const (
	Summer Season = iota
	Autumn
	Winter
	Spring
)

// String returns the display name for a TimeOfDay.
func (t TimeOfDay) String() string {
	if t == Night {
		return "Night"
	}
	return "Day"
}

// String returns the display name for a Weather.
func (w Weather) String() string {
	names := WeatherNames()
	if int(w) < len(names) {
		return names[w]
	}
	return "Unknown"
}

// WeatherNames returns the display names for all weather values.
// The order matches the Weather constants.
func WeatherNames() []string {
	return []string{"Clear", "Cloudy", "Rainy"}
}

// WeatherCount returns the number of weather values.
func WeatherCount() int {
	return len(WeatherNames())
}

// String returns the display name for a Season.
func (s Season) String() string {
	names := SeasonNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// SeasonNames returns the display names for all seasons in cycle order.
func SeasonNames() []string {
	return []string{"Summer", "Autumn", "Winter", "Spring"}
}

// Next returns the following season in the cycle.
func (s Season) Next() Season {
	return Season((int(s) + 1) % len(SeasonNames()))
}

// Environment is the (time-of-day, weather, season) triple carried by a field.
type Environment struct {
	Time    TimeOfDay
	Weather Weather
	Season  Season
}
