package guidelines

import "github.com/arcanahq/arcana/schemas"

// systemGuidelines is the compiled-in default set. These rows never touch the
// store, cannot be toggled or deleted, and take precedence over any custom
// guideline sharing an id.
var systemGuidelines = []schemas.Guideline{
	{
		ID:              "sys-three-card-spiritual-growth",
		SpreadID:        "three-card",
		StyleID:         "spiritual-growth",
		Name:            "Three Card Spread - Spiritual Growth",
		Description:     "Past, present and future read through the lens of the querent's inner development.",
		GeneralApproach: "Treat the three positions as one continuous arc of growth rather than isolated snapshots. Each card shows a phase of the same lesson the soul is working through.",
		Positions: []schemas.PositionGuide{
			{
				Position: "Past",
				Focus:    "Spiritual foundations and lessons already integrated",
				KeyQuestions: []string{
					"What inner work brought the querent to this moment?",
					"Which beliefs from the past still shape their path?",
				},
			},
			{
				Position: "Present",
				Focus:    "The soul lesson currently being worked through",
				KeyQuestions: []string{
					"What is this moment asking the querent to learn?",
					"Where is growth being resisted?",
				},
			},
			{
				Position: "Future",
				Focus:    "The direction of unfolding growth",
				KeyQuestions: []string{
					"What becomes possible once the present lesson lands?",
					"What practice would support that unfolding?",
				},
			},
		},
		KeyFocusAreas:      []string{"inner transformation", "life lessons", "alignment with purpose"},
		InterpretationTips: []string{"Frame challenges as invitations rather than obstacles", "Connect the cards into a single narrative of development", "Close with one concrete reflective practice"},
		Difficulty:         "beginner",
		EstimatedTime:      "10-15 min",
		IsActive:           true,
	},
	{
		ID:              "sys-three-card-practical-advice",
		SpreadID:        "three-card",
		StyleID:         "practical-advice",
		Name:            "Three Card Spread - Practical Advice",
		Description:     "Past, present and future oriented toward concrete next steps.",
		GeneralApproach: "Read the timeline as cause and effect. The past explains how the situation formed, the present names what is actionable now, the future shows the likely outcome if the advice is followed.",
		Positions: []schemas.PositionGuide{
			{
				Position: "Past",
				Focus:    "Decisions and events that created the current situation",
				KeyQuestions: []string{
					"What choice set this in motion?",
					"What pattern keeps repeating?",
				},
			},
			{
				Position: "Present",
				Focus:    "The lever the querent can actually pull right now",
				KeyQuestions: []string{
					"What is within the querent's control today?",
					"What should be stopped, started, or continued?",
				},
			},
			{
				Position: "Future",
				Focus:    "The realistic outcome of acting on the advice",
				KeyQuestions: []string{
					"What changes if the advice is taken this week?",
					"What risk remains even with good choices?",
				},
			},
		},
		KeyFocusAreas:      []string{"actionable steps", "decision making", "realistic outcomes"},
		InterpretationTips: []string{"End every position with something the querent can do", "Avoid abstractions; prefer verbs over adjectives", "Name one concrete first step in the conclusion"},
		Difficulty:         "beginner",
		EstimatedTime:      "10 min",
		IsActive:           true,
	},
	{
		ID:              "sys-three-card-psychological",
		SpreadID:        "three-card",
		StyleID:         "psychological",
		Name:            "Three Card Spread - Psychological Insight",
		Description:     "The timeline read as movements of the querent's inner landscape.",
		GeneralApproach: "Treat the cards as mirrors of mental and emotional patterns. The spread maps how an inner dynamic formed, how it operates today, and how it could be integrated.",
		Positions: []schemas.PositionGuide{
			{
				Position: "Past",
				Focus:    "Formative experiences and inherited patterns",
				KeyQuestions: []string{
					"What early experience does this card echo?",
					"Which coping strategy was learned here?",
				},
			},
			{
				Position: "Present",
				Focus:    "The active pattern and how it serves or limits",
				KeyQuestions: []string{
					"What need is this behavior trying to meet?",
					"Where does the pattern no longer fit the situation?",
				},
			},
			{
				Position: "Future",
				Focus:    "Integration and healthier expression of the pattern",
				KeyQuestions: []string{
					"What would this energy look like consciously expressed?",
					"What small experiment could test a new response?",
				},
			},
		},
		KeyFocusAreas:      []string{"self-awareness", "emotional patterns", "integration"},
		InterpretationTips: []string{"Describe patterns without judgment", "Use the cards' imagery as projection material", "Invite curiosity rather than prescribing change"},
		Difficulty:         "intermediate",
		EstimatedTime:      "15-20 min",
		IsActive:           true,
	},
	{
		ID:              "sys-one-card-practical-advice",
		SpreadID:        "one-card",
		StyleID:         "practical-advice",
		Name:            "One Card Draw - Practical Advice",
		Description:     "A single card answered as direct, usable guidance.",
		GeneralApproach: "One card carries the whole answer, so read it at three depths: the immediate message, the hidden caution, and the single action it recommends.",
		Positions: []schemas.PositionGuide{
			{
				Position: "The Card",
				Focus:    "The one message that matters most today",
				KeyQuestions: []string{
					"If this card could say one sentence, what would it be?",
					"What does the querent already suspect that this confirms?",
				},
			},
		},
		KeyFocusAreas:      []string{"clarity", "immediate action", "simplicity"},
		InterpretationTips: []string{"Resist padding; a short precise answer serves better", "Tie the card's advice to the literal question asked"},
		Difficulty:         "beginner",
		EstimatedTime:      "5 min",
		IsActive:           true,
	},
	{
		ID:              "sys-celtic-cross-spiritual-growth",
		SpreadID:        "celtic-cross",
		StyleID:         "spiritual-growth",
		Name:            "Celtic Cross - Spiritual Growth",
		Description:     "The full ten-position spread read as a map of the querent's spiritual terrain.",
		GeneralApproach: "Move through the cross as the inner situation and the staff as its outer unfolding. Weight the crossing card heavily: it names the teacher disguised as an obstacle.",
		Positions: []schemas.PositionGuide{
			{
				Position: "Present",
				Focus:    "The heart of the querent's current spiritual situation",
				KeyQuestions: []string{
					"What energy sits at the center of this season of life?",
				},
			},
			{
				Position: "Challenge",
				Focus:    "The crossing force acting as a hidden teacher",
				KeyQuestions: []string{
					"What is this obstacle trying to teach?",
				},
			},
			{
				Position: "Foundation",
				Focus:    "The root experience feeding the situation",
				KeyQuestions: []string{
					"What deep past event still nourishes or drains the present?",
				},
			},
			{
				Position: "Recent Past",
				Focus:    "What is passing out of influence",
				KeyQuestions: []string{
					"What is ready to be released with gratitude?",
				},
			},
			{
				Position: "Crown",
				Focus:    "The highest potential available",
				KeyQuestions: []string{
					"What is the best that can be reached for here?",
				},
			},
			{
				Position: "Near Future",
				Focus:    "The next step on the path",
				KeyQuestions: []string{
					"What energy approaches and how can it be welcomed?",
				},
			},
			{
				Position: "Self",
				Focus:    "The querent's own stance toward the situation",
				KeyQuestions: []string{
					"How does the querent see their role in this?",
				},
			},
			{
				Position: "Environment",
				Focus:    "Outside influences on the path",
				KeyQuestions: []string{
					"Who or what around the querent shapes this journey?",
				},
			},
			{
				Position: "Hopes and Fears",
				Focus:    "The intertwined hope and fear at work",
				KeyQuestions: []string{
					"Where do hope and fear turn out to be the same thing?",
				},
			},
			{
				Position: "Outcome",
				Focus:    "The likely arc of growth if nothing changes course",
				KeyQuestions: []string{
					"What transformation is this whole spread pointing toward?",
				},
			},
		},
		KeyFocusAreas:      []string{"life purpose", "karmic patterns", "transformation"},
		InterpretationTips: []string{"Read positions in pairs (present/challenge, crown/foundation) before the final synthesis", "Keep the outcome framed as trajectory, not fate"},
		Difficulty:         "advanced",
		EstimatedTime:      "30-45 min",
		IsActive:           true,
	},
	{
		ID:              "sys-one-card-spiritual-growth",
		SpreadID:        "one-card",
		StyleID:         "spiritual-growth",
		Name:            "One Card Draw - Spiritual Growth",
		Description:     "A single card read as today's spiritual teaching.",
		GeneralApproach: "Receive the card as a daily meditation seed. The reading succeeds when the querent leaves with one question worth sitting with, not an answer.",
		Positions: []schemas.PositionGuide{
			{
				Position: "The Card",
				Focus:    "Today's teaching",
				KeyQuestions: []string{
					"What quality does this card invite the querent to practice today?",
				},
			},
		},
		KeyFocusAreas:      []string{"daily practice", "mindfulness", "presence"},
		InterpretationTips: []string{"Offer the card's message as an open question", "Suggest a way to carry the card through the day"},
		Difficulty:         "beginner",
		EstimatedTime:      "5 min",
		IsActive:           true,
	},
}

// systemGuidelineIDs indexes the default set for O(1) immutability checks.
var systemGuidelineIDs = func() map[string]struct{} {
	ids := make(map[string]struct{}, len(systemGuidelines))
	for _, g := range systemGuidelines {
		ids[g.ID] = struct{}{}
	}
	return ids
}()

// IsSystemGuideline reports whether the id belongs to the compiled-in set.
func IsSystemGuideline(id string) bool {
	_, ok := systemGuidelineIDs[id]
	return ok
}

// SystemGuidelines returns a copy of the compiled-in default set.
func SystemGuidelines() []schemas.Guideline {
	out := make([]schemas.Guideline, len(systemGuidelines))
	copy(out, systemGuidelines)
	return out
}
