package reader

import (
	"github.com/kbukum/exportkit/errors"
	"github.com/kbukum/exportkit/marker"
)

// strategy holds the family-specific sharing rules.
type strategy interface {
	family() marker.Family
	// sharing derives the shared flag and boundary of a type from the policy
	// markers of this family found on it.
	sharing(impl string, policies []marker.Policy) (shared bool, boundary string, err error)
}

func strategyFor(f marker.Family) (strategy, bool) {
	switch f {
	case marker.Classic:
		return classicStrategy{}, true
	case marker.Light:
		return lightStrategy{}, true
	default:
		return nil, false
	}
}

// classicStrategy: shared unless the creation policy is NonShared.
type classicStrategy struct{}

func (classicStrategy) family() marker.Family { return marker.Classic }

func (classicStrategy) sharing(impl string, policies []marker.Policy) (bool, string, error) {
	switch len(policies) {
	case 0:
		return true, "", nil
	case 1:
		shared, boundary := policies[0].SharingPolicy()
		return shared, boundary, nil
	default:
		return false, "", errors.InvalidDeclaration(impl, "more than one creation policy")
	}
}

// lightStrategy: non-shared unless the type carries Shared.
type lightStrategy struct{}

func (lightStrategy) family() marker.Family { return marker.Light }

func (lightStrategy) sharing(impl string, policies []marker.Policy) (bool, string, error) {
	switch len(policies) {
	case 0:
		return false, "", nil
	case 1:
		shared, boundary := policies[0].SharingPolicy()
		return shared, boundary, nil
	}

	var sawShared, sawNonShared bool
	for _, p := range policies {
		if shared, _ := p.SharingPolicy(); shared {
			sawShared = true
		} else {
			sawNonShared = true
		}
	}
	if sawShared && sawNonShared {
		return false, "", errors.InvalidDeclaration(impl, "both Shared and NonShared are declared")
	}
	return false, "", errors.InvalidDeclaration(impl, "more than one sharing marker")
}
