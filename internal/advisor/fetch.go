package advisor

import (
	"context"
	"fmt"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// FetchUserData loads a user's profile and unenriched purchase list. A
// missing user is reported as common.ErrUserNotFound.
func FetchUserData(ctx context.Context, store service.Store, username string) (model.UserProfile, []model.Purchase, error) {
	user, err := store.LookupUser(ctx, username)
	if err != nil {
		return model.UserProfile{}, nil, fmt.Errorf("failed to load user: %w", err)
	}

	events, err := store.LookupEvents(ctx, user.ID)
	if err != nil {
		return model.UserProfile{}, nil, fmt.Errorf("failed to load purchases for %s: %w", username, err)
	}

	purchases := make([]model.Purchase, len(events))
	for i, e := range events {
		purchases[i] = model.PurchaseFromEvent(e)
	}

	return user.Profile(), purchases, nil
}
