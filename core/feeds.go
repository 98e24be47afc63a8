package core

import (
	"context"

	"github.com/onyx-protocol/txfilter/feed"
)

type createFeedRequest struct {
	Alias       string  `json:"alias"`
	Filter      string  `json:"filter"`
	After       string  `json:"after"`
	ClientToken *string `json:"client_token"`
}

func (a *API) createFeed(ctx context.Context, in createFeedRequest) (*feed.Feed, error) {
	return a.Feeds.Create(ctx, in.Alias, in.Filter, in.After, in.ClientToken)
}

type feedKey struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

func (a *API) getFeed(ctx context.Context, in feedKey) (*feed.Feed, error) {
	return a.Feeds.Find(ctx, in.ID, in.Alias)
}

type updateFeedRequest struct {
	ID            string `json:"id"`
	Alias         string `json:"alias"`
	After         string `json:"after"`
	PreviousAfter string `json:"previous_after"`
}

func (a *API) updateFeed(ctx context.Context, in updateFeedRequest) (*feed.Feed, error) {
	return a.Feeds.Update(ctx, in.ID, in.Alias, in.After, in.PreviousAfter)
}

func (a *API) deleteFeed(ctx context.Context, in feedKey) error {
	return a.Feeds.Delete(ctx, in.ID, in.Alias)
}
