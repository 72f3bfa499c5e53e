package solidworks

import (
	"fmt"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/document"
)

// Freeze moves the freeze bar past the last feature in the document's feature
// history, preventing downstream edits from being recomputed.
func (c *Client) Freeze(doc *document.Document) error {
	if c.app == nil {
		return fmt.Errorf("not connected")
	}

	c.log.Info("freezing document", "name", doc.Source.Name())

	// The freeze bar is hidden by default; the toggle must be on before
	// EditFreeze has any effect.
	if _, err := c.app.Call("SetUserPreferenceToggle", toggleShowFreezeBar, true); err != nil {
		return fmt.Errorf("enabling freeze bar: %w", err)
	}

	name, err := c.lastFeatureName(doc)
	if err != nil {
		return fmt.Errorf("freezing %s: %w", doc.Source.Name(), err)
	}

	manager, err := c.featureManager(doc)
	if err != nil {
		return err
	}
	if _, err := manager.Call("EditFreeze", freezeBarAfterFeature, name, true); err != nil {
		return fmt.Errorf("moving freeze bar past %q: %w", name, err)
	}
	return nil
}

// lastFeatureName walks the feature history to its tail and returns the last
// feature's name. The history is a linked traversal in original creation
// order; the walk follows next-pointers until they run out, capped by the
// separately reported feature count so a malformed or cyclic linkage cannot
// loop forever.
func (c *Client) lastFeatureName(doc *document.Document) (string, error) {
	manager, err := c.featureManager(doc)
	if err != nil {
		return "", err
	}

	countResult, err := manager.Call("GetFeatureCount", true)
	if err != nil {
		return "", fmt.Errorf("getting feature count: %w", err)
	}
	count := countResult.Int()
	if count <= 0 {
		return "", fmt.Errorf("document has no features")
	}

	rootResult, err := manager.Call("GetFeatureTreeRootItem2", 0)
	if err != nil {
		return "", fmt.Errorf("getting feature tree root: %w", err)
	}
	root := rootResult.Object()
	if root == nil {
		return "", fmt.Errorf("feature tree root is not an object")
	}

	firstResult, err := root.Get("GetFirstChild")
	if err != nil {
		return "", fmt.Errorf("getting first feature: %w", err)
	}
	node := firstResult.Object()
	if node == nil {
		return "", fmt.Errorf("feature tree has no first child")
	}

	for i := 0; i < count; i++ {
		nextResult, err := node.Get("GetNext")
		if err != nil {
			return "", fmt.Errorf("walking feature tree: %w", err)
		}
		next := nextResult.Object()
		if next == nil {
			break
		}
		node = next
	}

	featureResult, err := node.Get("Object")
	if err != nil {
		return "", fmt.Errorf("resolving tail feature: %w", err)
	}
	feature := featureResult.Object()
	if feature == nil {
		return "", fmt.Errorf("tail tree item has no feature")
	}
	nameResult, err := feature.Get("Name")
	if err != nil {
		return "", fmt.Errorf("reading tail feature name: %w", err)
	}
	return nameResult.String(), nil
}

func (c *Client) featureManager(doc *document.Document) (com.Object, error) {
	result, err := doc.Model.Get("FeatureManager")
	if err != nil {
		return nil, fmt.Errorf("getting feature manager: %w", err)
	}
	manager := result.Object()
	if manager == nil {
		return nil, fmt.Errorf("feature manager is not an object")
	}
	return manager, nil
}
