package bank

import (
	"html"
	"math/rand"

	"cybercase/internal/opentdb"
)

// FromTrivia converts OpenTDB multiple-choice questions into bank entries with
// shuffled options. Ids are left zero so Add assigns them.
func FromTrivia(raw []opentdb.RawQuestion, rng *rand.Rand) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		if len(item.IncorrectAnswers) == 0 {
			continue
		}
		questions = append(questions, triviaQuestion(item, rng))
	}
	return questions
}

func triviaQuestion(raw opentdb.RawQuestion, rng *rand.Rand) Question {
	type choice struct {
		text      string
		isCorrect bool
	}

	choices := make([]choice, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		choices = append(choices, choice{text: html.UnescapeString(incorrect)})
	}
	choices = append(choices, choice{
		text:      html.UnescapeString(raw.CorrectAnswer),
		isCorrect: true,
	})

	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	question := Question{
		Question: html.UnescapeString(raw.Question),
		Options:  make([]string, len(choices)),
	}
	for idx, candidate := range choices {
		question.Options[idx] = candidate.text
		if candidate.isCorrect {
			question.Answer = idx
		}
	}
	return question
}
