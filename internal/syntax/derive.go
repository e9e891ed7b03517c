package syntax

// deriveTraits are the traits whose implementation blocks collapse back
// into a #[derive(...)] attribute on the implementing type. Serialize and
// Deserialize are not built-in derives but are common enough to treat the
// same way.
var deriveTraits = map[string]bool{
	"Clone":               true,
	"Copy":                true,
	"Debug":               true,
	"Default":             true,
	"Display":             true,
	"Eq":                  true,
	"Error":               true,
	"FromStr":             true,
	"Hash":                true,
	"Ord":                 true,
	"PartialEq":           true,
	"PartialOrd":          true,
	"Send":                true,
	"StructuralPartialEq": true,
	"Sync":                true,
	"Serialize":           true,
	"Deserialize":         true,
}

// IsDeriveTrait reports whether name is a standard derivable trait.
func IsDeriveTrait(name string) bool {
	return deriveTraits[name]
}
