package factors

// Built-in factor table, g/veh-km. Literature screening values for the four
// categories the intersection counts distinguish; anything else falls back to
// defaultRates via Catalog.Resolve.
var builtinRates = map[string]Rates{
	"car":        {"CO2": 506.0, "NOx": 2.7, "PMx": 0.1, "SOx": 0.011, "HC": 0.5, "CO": 49.5},
	"motorcycle": {"CO2": 118.0, "NOx": 0.2, "PMx": 2.0, "SOx": 0.004, "HC": 3.0, "CO": 26.0},
	"truck":      {"CO2": 1230.0, "NOx": 12.5, "PMx": 1.5, "SOx": 0.374, "HC": 0.7, "CO": 12.4},
	"bus":        {"CO2": 1300.0, "NOx": 12.5, "PMx": 1.5, "SOx": 0.374, "HC": 0.7, "CO": 12.4},
}

var defaultRates = Rates{
	"CO2": 200.0, "NOx": 1.0, "PMx": 0.5, "SOx": 0.05, "HC": 0.5, "CO": 10.0,
}

// Linear instantaneous-emission coefficients per category.
var builtinModels = map[string]Coefficients{
	"car":        {Speed: 0.32, Accel: 1.8, Const: 0.8},
	"motorcycle": {Speed: 0.11, Accel: 0.9, Const: 0.3},
	"truck":      {Speed: 0.85, Accel: 4.2, Const: 2.1},
	"bus":        {Speed: 0.9, Accel: 4.5, Const: 2.3},
}

var defaultModel = Coefficients{Speed: 0.25, Accel: 1.5, Const: 0.5}
