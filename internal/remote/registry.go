package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cdc_zoning/internal/model"
)

// FileRegistry reads the node inventory from a nodes.json style file
type FileRegistry struct {
	Path string
}

// Nodes reads and decodes the file
func (r FileRegistry) Nodes(ctx context.Context) ([]model.RegisteredNode, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("read node inventory: %w", err)
	}
	var inv model.NodeInventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidDocument, r.Path, err)
	}
	return inv.Nodes, nil
}
