package api

import (
	"errors"

	"github.com/gravitrone/howdju/cli/internal/editors"
	"github.com/gravitrone/howdju/cli/internal/entity"
)

// ErrNotStandalone is returned for editor types the server only accepts
// as part of another entity.
var ErrNotStandalone = errors.New("entity is saved with its parent")

// EditorTransport routes editor commits to the matching endpoint. Drafts
// that already carry an id are updates.
func (c *Client) EditorTransport() editors.Transport {
	return func(key editors.Key, e map[string]any) (map[string]any, error) {
		id, _ := e["id"].(string)
		switch key.Type {
		case editors.TypeProposition:
			if id != "" {
				return c.UpdateProposition(id, e)
			}
			return c.CreateProposition(e)
		case editors.TypePersorg:
			if id != "" {
				return c.UpdatePersorg(id, e)
			}
			return c.CreatePersorg(e)
		case editors.TypeStatement:
			return c.CreateStatement(e)
		case editors.TypeJustification, editors.TypeCounterJustification:
			return c.CreateJustification(e)
		case editors.TypeWritQuote:
			return c.CreateWritQuote(e)
		case editors.TypePropositionCompound:
			return nil, ErrNotStandalone
		default:
			return nil, &entity.ExhaustedEnumError{Enum: "EditorType", Value: key.Type}
		}
	}
}
