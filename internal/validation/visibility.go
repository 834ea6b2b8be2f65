package validation

import (
	"github.com/experiencepoints/api/internal/model"
)

func ValidateProfileVisibility(v string) error {
	switch v {
	case model.ProfilePrivate, model.ProfileFriends, model.ProfilePublic:
		return nil
	}
	return newError("Invalid visibility setting")
}

func ValidateGoalVisibility(v string) error {
	switch v {
	case model.GoalVisibilityInherit, model.GoalVisibilityPrivate, model.GoalVisibilityPublic:
		return nil
	}
	return newError("Invalid visibility setting")
}

func ValidateGoalType(t string) error {
	switch t {
	case model.GoalTypeSkill, model.GoalTypeFinancial:
		return nil
	}
	return newError("Goal type must be 'skill' or 'financial'")
}
