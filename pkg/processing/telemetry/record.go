package telemetry

// Record is the flat telemetry of the player's car for one tick
type Record struct {
	Pedals  PedalsAndSpeed `json:"pedals"`
	Fuel    FuelAndAngles  `json:"fuel"`
	LF      Tyre           `json:"lf"`
	RF      Tyre           `json:"rf"`
	LR      Tyre           `json:"lr"`
	RR      Tyre           `json:"rr"`
	Weather Weather        `json:"weather"`
	Session Session        `json:"session"`
}

type PedalsAndSpeed struct {
	Throttle      float32 `json:"throttle"`
	Brake         float32 `json:"brake"`
	Clutch        float32 `json:"clutch"`
	Gear          int     `json:"gear"`
	ShiftGrindRPM float32 `json:"shiftGrindRpm"`
	RPM           float32 `json:"rpm"`
	Speed         float32 `json:"speed"`
}

type FuelAndAngles struct {
	FuelLevel          float32 `json:"fuelLevel"`
	FuelLevelPct       float32 `json:"fuelLevelPct"`
	FuelUsePerHour     float32 `json:"fuelUsePerHour"`
	LatAccel           float32 `json:"latAccel"`
	LongAccel          float32 `json:"longAccel"`
	SteeringWheelAngle float32 `json:"steeringWheelAngle"`
}

type Tyre struct {
	WearL    float32 `json:"wearL"`
	WearM    float32 `json:"wearM"`
	WearR    float32 `json:"wearR"`
	TempL    float32 `json:"tempL"`
	TempM    float32 `json:"tempM"`
	TempR    float32 `json:"tempR"`
	TempCL   float32 `json:"tempCL"`
	TempCM   float32 `json:"tempCM"`
	TempCR   float32 `json:"tempCR"`
	Pressure float32 `json:"pressure"`
	Speed    float32 `json:"speed"`
}

type Weather struct {
	AirPressure      float32 `json:"airPressure"`
	AirTemp          float32 `json:"airTemp"`
	RelativeHumidity float32 `json:"relativeHumidity"`
	Skies            string  `json:"skies"`
	TrackTemp        float32 `json:"trackTemp"`
	WindDir          float32 `json:"windDir"`
	WindVel          float32 `json:"windVel"`
	WeatherType      string  `json:"weatherType"`
}

type Session struct {
	SessionTime       float64 `json:"sessionTime"`
	SessionTimeRemain float64 `json:"sessionTimeRemain"`
	LapBestLapTime    float32 `json:"lapBestLapTime"`
	Lap               int     `json:"lap"`
	LapCurrentLapTime float32 `json:"lapCurrentLapTime"`
	LapBestLap        int     `json:"lapBestLap"`
	LapDistPct        float32 `json:"lapDistPct"`
}

// SkiesLabel maps the Skies channel to a label
func SkiesLabel(v int) string {
	switch v {
	case 0:
		return "Clear"
	case 1, 2:
		return "Cloudy"
	case 3:
		return "Overcast"
	default:
		return "Unknown"
	}
}

// WeatherTypeLabel maps the WeatherType channel to a label
func WeatherTypeLabel(v int) string {
	switch v {
	case 0:
		return "Constant"
	case 1:
		return "Dynamic"
	default:
		return "Unknown"
	}
}
