package feature

// Identity is the resolved scalar (string or number) that deduplicates a
// feature across tiles and queries, or Sentinel when the feature has none.
type Identity = interface{}

// Sentinel marks a feature without a stable identity. Two features with
// sentinel identity are never duplicates of each other.
const Sentinel = -1

// Defined reports whether id can participate in deduplication.
func Defined(id Identity) bool {
	return id != nil && id != Sentinel
}

type ruleKind int

const (
	ruleNone ruleKind = iota
	ruleProperty
	ruleTopLevelID
)

// IdentityRule selects how a feature's identity is derived.
type IdentityRule struct {
	kind     ruleKind
	property string
}

// ByProperty resolves identity from the named property.
func ByProperty(name string) IdentityRule {
	return IdentityRule{kind: ruleProperty, property: name}
}

// ByTopLevelID resolves identity from the feature's own ID field.
func ByTopLevelID() IdentityRule {
	return IdentityRule{kind: ruleTopLevelID}
}

// NoIdentity resolves every feature to the sentinel.
func NoIdentity() IdentityRule {
	return IdentityRule{kind: ruleNone}
}

// RuleFor maps the layer's uniqueIDProperty option to a rule: a non-empty
// property name wins, otherwise the top-level ID fallback applies.
func RuleFor(uniqueIDProperty string) IdentityRule {
	if uniqueIDProperty != "" {
		return ByProperty(uniqueIDProperty)
	}
	return ByTopLevelID()
}

// Resolve derives f's identity under the given rule. It never fails: an
// absent property or ID is valid data and resolves to the sentinel.
func Resolve(f *Feature, rule IdentityRule) Identity {
	switch rule.kind {
	case ruleProperty:
		if v, ok := f.Properties[rule.property]; ok && v != nil {
			return v
		}
		return Sentinel
	case ruleTopLevelID:
		if f.ID != nil {
			return f.ID
		}
		return Sentinel
	default:
		return Sentinel
	}
}
