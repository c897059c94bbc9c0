package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

var (
	errMissingCell = errors.New("cell is required")
	errMissingLang = errors.New("language is required")
)

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) handleState(_ context.Context, c *client, _ *Message) error {
	c.sendState()
	return nil
}

func (that *Server) handleCellPlay(ctx context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		return errMissingCell
	}

	if _, err = c.engine.PlayCell(*payload.Cell); err != nil {
		return fmt.Errorf("failed to play cell: %w", err)
	}

	that.save(ctx, c)

	return nil
}

func (that *Server) handleRoundReset(ctx context.Context, c *client, _ *Message) error {
	c.engine.ResetRound()
	that.save(ctx, c)

	return nil
}

func (that *Server) handleSeriesReset(ctx context.Context, c *client, _ *Message) error {
	c.engine.ResetSeries()
	that.save(ctx, c)

	return nil
}

func (that *Server) handleModeSet(ctx context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	mode, err := entity.ParseMode(payload.Mode)
	if err != nil {
		return err
	}

	if err = c.engine.SetMode(mode); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}

	that.save(ctx, c)

	return nil
}

func (that *Server) handleLanguageSet(_ context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.Language == "" {
		return errMissingLang
	}

	if !that.presenter.Catalog().Has(payload.Language) {
		return fmt.Errorf("%w: %q", apperror.ErrUnknownLanguage, payload.Language)
	}

	c.SetLanguage(payload.Language)
	c.sendState()

	return nil
}

// save - stores the snapshot; failures are only logged.
func (that *Server) save(ctx context.Context, c *client) {
	if err := that.sessions.Save(ctx, c.sessionID, c.engine); err != nil {
		c.logger.Error("failed to save session", "error", err)
	}
}
