// Package classify abstracts the image classification / price suggestion
// service behind a narrow interface. The real model runs elsewhere; the
// static implementation keeps the endpoint functional without it.
package classify

// Candidate is one classification guess with its confidence.
type Candidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Prediction is the classification result with a suggested price range.
type Prediction struct {
	TopLabel   string      `json:"topLabel"`
	Candidates []Candidate `json:"candidates"`
	PriceRange [2]int      `json:"priceRange"`
}

// Classifier labels an image and suggests a price range for it.
type Classifier interface {
	Classify(data []byte) (*Prediction, error)
}

// StaticClassifier returns a fixed prediction. Placeholder until a real
// model endpoint is wired in.
type StaticClassifier struct{}

func (StaticClassifier) Classify(_ []byte) (*Prediction, error) {
	return &Prediction{
		TopLabel: "sample_model",
		Candidates: []Candidate{
			{Label: "sample_model", Score: 0.92},
			{Label: "alt_model", Score: 0.73},
		},
		PriceRange: [2]int{50000, 70000},
	}, nil
}
