package entities

// Ability is one of the six ability abbreviations used by the dnd5e system
type Ability string

const (
	AbilityStrength     Ability = "str"
	AbilityDexterity    Ability = "dex"
	AbilityConstitution Ability = "con"
	AbilityIntelligence Ability = "int"
	AbilityWisdom       Ability = "wis"
	AbilityCharisma     Ability = "cha"
)

// Abilities lists the abilities in sheet order
var Abilities = []Ability{
	AbilityStrength,
	AbilityDexterity,
	AbilityConstitution,
	AbilityIntelligence,
	AbilityWisdom,
	AbilityCharisma,
}

// Valid reports whether a is a known ability
func (a Ability) Valid() bool {
	for _, known := range Abilities {
		if a == known {
			return true
		}
	}
	return false
}

// LocalizationKey is the catalog key for the ability's long name
func (a Ability) LocalizationKey() string {
	switch a {
	case AbilityStrength:
		return "DND5E.AbilityStr"
	case AbilityDexterity:
		return "DND5E.AbilityDex"
	case AbilityConstitution:
		return "DND5E.AbilityCon"
	case AbilityIntelligence:
		return "DND5E.AbilityInt"
	case AbilityWisdom:
		return "DND5E.AbilityWis"
	case AbilityCharisma:
		return "DND5E.AbilityCha"
	default:
		return string(a)
	}
}
