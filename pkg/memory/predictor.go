package memory

import (
	"context"
	"fmt"
	"strings"
)

// GenericGreeting is used when nothing is known about the user.
const GenericGreeting = "Hello! How can I help you today?"

// Predictor turns a user's interest ranking into a greeting.
type Predictor struct {
	interests *InterestModel
	limits    Limits
}

// NewPredictor creates a predictor reading from interests.
func NewPredictor(interests *InterestModel, limits Limits) *Predictor {
	return &Predictor{
		interests: interests,
		limits:    limits.withDefaults(),
	}
}

// Greeting returns a greeting naming the user's top topics along with the
// keywords it was built from. The greeting is always usable: on any read
// error it is GenericGreeting and the error is returned for logging only.
func (p *Predictor) Greeting(ctx context.Context, userID string) (string, []Keyword, error) {
	keywords, err := p.interests.TopKeywords(ctx, userID, p.limits.GreetingKeywords)
	if err != nil {
		return GenericGreeting, []Keyword{}, err
	}

	return RenderGreeting(keywords, p.limits.GreetingTopics), keywords, nil
}

// RenderGreeting names up to topics keywords in a welcome-back sentence, or
// returns GenericGreeting when there are none.
func RenderGreeting(keywords []Keyword, topics int) string {
	if len(keywords) == 0 || topics <= 0 {
		return GenericGreeting
	}

	names := make([]string, 0, topics)
	for _, k := range keywords[:min(topics, len(keywords))] {
		names = append(names, k.Keyword)
	}

	return fmt.Sprintf("Welcome back! Would you like to continue discussing %s?", strings.Join(names, ", "))
}
