package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/spend-sage/internal/model"
)

// ClassifyCall records one request made to a FakeClassifier.
type ClassifyCall struct {
	ProductName string
	Brands      []string
	Categories  []string
}

type classifyReply struct {
	err      error
	brand    string
	category string
}

// FakeClassifier returns scripted classifications keyed by product name.
// Replies for a product are consumed in order; the last one repeats.
type FakeClassifier struct {
	replies map[string][]classifyReply
	calls   []ClassifyCall
	mu      sync.Mutex
}

// NewFakeClassifier creates an empty FakeClassifier.
func NewFakeClassifier() *FakeClassifier {
	return &FakeClassifier{replies: make(map[string][]classifyReply)}
}

// On scripts a successful reply for productName.
func (f *FakeClassifier) On(productName, brand, category string) *FakeClassifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[productName] = append(f.replies[productName], classifyReply{brand: brand, category: category})
	return f
}

// OnError scripts a failing reply for productName.
func (f *FakeClassifier) OnError(productName string, err error) *FakeClassifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[productName] = append(f.replies[productName], classifyReply{err: err})
	return f
}

// Classify implements service.Classifier.
func (f *FakeClassifier) Classify(ctx context.Context, productName string, brands, categories []string) (model.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, ClassifyCall{
		ProductName: productName,
		Brands:      append([]string(nil), brands...),
		Categories:  append([]string(nil), categories...),
	})

	if err := ctx.Err(); err != nil {
		return model.Classification{}, err
	}

	queue := f.replies[productName]
	if len(queue) == 0 {
		return model.Classification{}, fmt.Errorf("no scripted classification for %q", productName)
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.replies[productName] = queue[1:]
	}

	if reply.err != nil {
		return model.Classification{}, reply.err
	}
	return model.Classification{ProductName: productName, Brand: reply.brand, Category: reply.category}, nil
}

// Calls returns the requests received so far.
func (f *FakeClassifier) Calls() []ClassifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ClassifyCall, len(f.calls))
	copy(out, f.calls)
	return out
}
