package mcpserver

// EquationFormatContract documents the equation syntax accepted by every tool.
const EquationFormatContract = `# Equation Format

Equations are written as ` + "`" + `reactants -> products` + "`" + `.

## Rules

1. Exactly one arrow: ` + "`" + `->` + "`" + `, ` + "`" + `=>` + "`" + ` or ` + "`" + `→` + "`" + `.
2. Terms on each side are separated by ` + "`" + `+` + "`" + `.
3. A term is an optional positive integer coefficient followed by a formula:
   ` + "`" + `2 O2` + "`" + ` and ` + "`" + `2O2` + "`" + ` are equivalent; a missing coefficient means 1. Coefficients and counts are at most 1000000.
4. Formulas are element symbols (capital letter, optional lowercase letter) with
   optional counts. Groups use ` + "`" + `( )` + "`" + ` or ` + "`" + `[ ]` + "`" + ` and may nest:
   ` + "`" + `Ca(OH)2` + "`" + `, ` + "`" + `K4[Fe(CN)6]` + "`" + `.
5. Symbols are case-sensitive: ` + "`" + `Co` + "`" + ` is cobalt, ` + "`" + `CO` + "`" + ` is carbon monoxide.
6. An optional phase suffix ` + "`" + `(g)` + "`" + `, ` + "`" + `(l)` + "`" + `, ` + "`" + `(s)` + "`" + ` or ` + "`" + `(aq)` + "`" + ` is kept as a label and
   does not change the species looked up. Phases other than gas get a warning,
   since the built-in table holds gas-phase values.
7. The same species may appear more than once on a side; each occurrence counts.

## Units

- ΔH and ΔG are reported in kJ/mol, ΔS in J/mol·K.
- Temperature is in Kelvin and must be greater than zero.
- ΔG = ΔH − T·ΔS/1000.

## Example

` + "```" + `
CH4 + 2 O2 -> CO2 + 2 H2O
` + "```" + `
`
