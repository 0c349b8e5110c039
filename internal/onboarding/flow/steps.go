package flow

// Response field names collected by the step table.
const (
	FieldStoryMotivation               = "storyMotivation"
	FieldLifePhase                     = "lifePhase"
	FieldStoryTone                     = "storyTone"
	FieldGuidanceNeed                  = "guidanceNeed"
	FieldTopicsOfInterest              = "topicsOfInterest"
	FieldSessionFrequency              = "sessionFrequency"
	FieldReminderPreference            = "reminderPreference"
	FieldThirdPersonName               = "thirdPersonName"
	FieldRelationshipToPerson          = "relationshipToPerson"
	FieldThirdPersonAgeRange           = "thirdPersonAgeRange"
	FieldThirdPersonLanguagePreference = "thirdPersonLanguagePreference"
	FieldGiftOccasion                  = "giftOccasion"
)

func next(stepID string) Option {
	return Option{ID: OptionNext, Target: PathStep(stepID)}
}

// defaultSteps is the step table for the alternate onboarding flow.
//
//	A: own story       A1 → A2 → A3 → A4 (neutral | registration)
//	B: guided          B1 → B2 → B3 → B4 (neutral | B5) → B5 → registration
//	C: third person    C1 → C2 → C3 → C4 (neutral | registration)
func defaultSteps() map[Path][]Step {
	return map[Path][]Step{
		PathA: {
			{ID: "A1", RequiredFields: []string{FieldStoryMotivation}, Options: []Option{next("A2")}},
			{ID: "A2", RequiredFields: []string{FieldLifePhase}, Options: []Option{next("A3")}},
			{ID: "A3", RequiredFields: []string{FieldStoryTone}, Options: []Option{next("A4")}},
			{
				ID: "A4",
				Options: []Option{
					{ID: OptionStartStorytelling, Target: Neutral()},
					{ID: OptionGoRegistration, Target: Registration()},
				},
				ResumeOptionID: OptionGoRegistration,
			},
		},
		PathB: {
			{ID: "B1", RequiredFields: []string{FieldGuidanceNeed}, Options: []Option{next("B2")}},
			{ID: "B2", RequiredFields: []string{FieldTopicsOfInterest}, Options: []Option{next("B3")}},
			{ID: "B3", RequiredFields: []string{FieldSessionFrequency}, Options: []Option{next("B4")}},
			{
				ID: "B4",
				Options: []Option{
					{ID: OptionJumpToNeutral, Target: Neutral()},
					{ID: OptionContinueGuided, Target: PathStep("B5")},
				},
				ResumeOptionID: OptionContinueGuided,
			},
			{
				ID:             "B5",
				RequiredFields: []string{FieldReminderPreference},
				Options:        []Option{{ID: OptionFinish, Target: Registration()}},
			},
		},
		PathC: {
			{ID: "C1", RequiredFields: []string{FieldThirdPersonName}, Options: []Option{next("C2")}},
			{
				ID: "C2",
				RequiredFields: []string{
					FieldRelationshipToPerson,
					FieldThirdPersonAgeRange,
					FieldThirdPersonLanguagePreference,
				},
				Options: []Option{next("C3")},
			},
			{ID: "C3", RequiredFields: []string{FieldGiftOccasion}, Options: []Option{next("C4")}},
			{
				ID: "C4",
				Options: []Option{
					{ID: OptionStartStorytelling, Target: Neutral()},
					{ID: OptionGoRegistration, Target: Registration()},
				},
				ResumeOptionID: OptionGoRegistration,
			},
		},
	}
}
