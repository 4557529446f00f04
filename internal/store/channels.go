package store

import (
	"context"
	"fmt"

	"ytharvest/internal/catalog"
	"ytharvest/internal/services"
)

// insertChunk keeps multi-row inserts under SQLite's bound variable limit.
const insertChunk = 500

// ChannelSet stores channel tables in the state database. Each save appends
// a new set; loads return the most recent one.
type ChannelSet struct {
	store *Store
}

var _ catalog.ChannelTable = (*ChannelSet)(nil)

// Channels returns the channel table view of s.
func (s *Store) Channels() *ChannelSet {
	return &ChannelSet{store: s}
}

// SaveChannels records channels as a new set, tagged with the run id carried
// by ctx when there is one.
func (c *ChannelSet) SaveChannels(ctx context.Context, channels []catalog.Channel) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin channel set tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runID, _ := services.RunIDFromContext(ctx)
	res, err := exec(ctx, tx, psql.Insert("channel_sets").
		Columns("run_id", "saved_at").
		Values(nullableString(runID), now()))
	if err != nil {
		return fmt.Errorf("insert channel set: %w", err)
	}
	setID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("channel set id: %w", err)
	}

	for start := 0; start < len(channels); start += insertChunk {
		insert := psql.Insert("channels").Columns(
			"set_id", "position", "channel_id", "title",
			"subscriber_count", "video_count", "view_count", "country",
		).Options("OR IGNORE")
		for i, ch := range channels[start:min(start+insertChunk, len(channels))] {
			insert = insert.Values(setID, start+i, ch.ID, ch.Title, ch.SubscriberCount, ch.VideoCount, ch.ViewCount, ch.Country)
		}
		if _, err := exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert channels: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit channel set: %w", err)
	}
	return nil
}

// LoadChannels returns the most recently saved set in saved order. It reports
// services.ErrMissingInput when no set was ever saved.
func (c *ChannelSet) LoadChannels(ctx context.Context) ([]catalog.Channel, error) {
	query, args, err := psql.Select("id").From("channel_sets").OrderBy("id DESC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var setID int64
	if err := c.store.db.QueryRowContext(ctx, query, args...).Scan(&setID); err != nil {
		if isNoRows(err) {
			return nil, services.Wrap(services.ErrMissingInput, "store", "load channels",
				fmt.Sprintf("no channel set in %s; run 'ytharvest discover' first", c.store.path), err)
		}
		return nil, fmt.Errorf("latest channel set: %w", err)
	}

	query, args, err = psql.Select(
		"channel_id", "title", "subscriber_count", "video_count", "view_count", "country",
	).From("channels").Where("set_id = ?", setID).OrderBy("position").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	channels := make([]catalog.Channel, 0)
	for rows.Next() {
		var ch catalog.Channel
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.SubscriberCount, &ch.VideoCount, &ch.ViewCount, &ch.Country); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return channels, nil
}
