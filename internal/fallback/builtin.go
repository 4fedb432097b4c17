package fallback

func v(x float64) *float64 { return &x }

// Default returns the built-in table: 298.15 K reference values in kJ/mol
// (ΔHf°) and J/mol·K (S°, Cp), gas phase unless the species is a solid.
func Default() *Table {
	return NewTable(map[string]Entry{
		"H2O":     {Name: "water", Enthalpy: v(-241.8), Entropy: v(188.8), HeatCapacity: v(33.6)},
		"CO2":     {Name: "carbon dioxide", Enthalpy: v(-393.5), Entropy: v(213.8), HeatCapacity: v(37.1)},
		"O2":      {Name: "oxygen", Enthalpy: v(0), Entropy: v(205.2), HeatCapacity: v(29.4)},
		"H2":      {Name: "hydrogen", Enthalpy: v(0), Entropy: v(130.7), HeatCapacity: v(28.8)},
		"N2":      {Name: "nitrogen", Enthalpy: v(0), Entropy: v(191.6), HeatCapacity: v(29.1)},
		"CH4":     {Name: "methane", Enthalpy: v(-74.8), Entropy: v(186.3), HeatCapacity: v(35.7)},
		"NH3":     {Name: "ammonia", Enthalpy: v(-45.9), Entropy: v(192.8), HeatCapacity: v(35.1)},
		"C2H6":    {Name: "ethane", Enthalpy: v(-84.0), Entropy: v(229.6), HeatCapacity: v(52.5)},
		"C2H4":    {Name: "ethylene", Enthalpy: v(52.4), Entropy: v(219.3), HeatCapacity: v(42.9)},
		"C3H8":    {Name: "propane", Enthalpy: v(-103.8), Entropy: v(270.3), HeatCapacity: v(73.6)},
		"CO":      {Name: "carbon monoxide", Enthalpy: v(-110.5), Entropy: v(197.7), HeatCapacity: v(29.1)},
		"H2O2":    {Name: "hydrogen peroxide", Enthalpy: v(-136.3), Entropy: v(232.7), HeatCapacity: v(43.1)},
		"NO":      {Name: "nitric oxide", Enthalpy: v(90.3), Entropy: v(210.8), HeatCapacity: v(29.8)},
		"NO2":     {Name: "nitrogen dioxide", Enthalpy: v(33.2), Entropy: v(240.1), HeatCapacity: v(37.2)},
		"SO2":     {Name: "sulfur dioxide", Enthalpy: v(-296.8), Entropy: v(248.2), HeatCapacity: v(39.9)},
		"SO3":     {Name: "sulfur trioxide", Enthalpy: v(-395.7), Entropy: v(256.8), HeatCapacity: v(50.7)},
		"HCl":     {Name: "hydrogen chloride", Enthalpy: v(-92.3), Entropy: v(186.9), HeatCapacity: v(29.1)},
		"Cl2":     {Name: "chlorine", Enthalpy: v(0), Entropy: v(223.1), HeatCapacity: v(33.9)},
		"C":       {Name: "graphite", Enthalpy: v(0), Entropy: v(5.7), HeatCapacity: v(8.5)},
		"CaCO3":   {Name: "calcite", Enthalpy: v(-1206.9), Entropy: v(92.9), HeatCapacity: v(83.5)},
		"CaO":     {Name: "calcium oxide", Enthalpy: v(-635.1), Entropy: v(38.1), HeatCapacity: v(42.0)},
		"Ca(OH)2": {Name: "calcium hydroxide", Enthalpy: v(-985.2), Entropy: v(83.4), HeatCapacity: v(87.5)},
	})
}
