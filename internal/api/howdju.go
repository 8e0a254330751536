package api

import (
	"fmt"
	"net/url"
	"strconv"
)

// --- Auth ---

func (c *Client) Login(creds Credentials) (*Session, error) {
	data, err := c.post("/login", map[string]any{"credentials": creds})
	if err != nil {
		return nil, err
	}
	return decodeOne[Session](data)
}

// --- Propositions ---

// GetProposition fetches a proposition with its justifications, their
// bases and counter-justifications.
func (c *Client) GetProposition(id string) (map[string]any, error) {
	data, err := c.get(buildQuery(entityPath("propositions", id), QueryParams{"include": "justifications"}))
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) CreateProposition(proposition map[string]any) (map[string]any, error) {
	data, err := c.post("/propositions", map[string]any{"proposition": proposition})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) UpdateProposition(id string, proposition map[string]any) (map[string]any, error) {
	data, err := c.put(entityPath("propositions", id), map[string]any{"proposition": proposition})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// ListTaggedPropositions returns one page of the propositions carrying a
// tag. An empty token starts from the first page.
func (c *Client) ListTaggedPropositions(tagID string, count int, continuationToken string) (*PropositionPage, error) {
	params := QueryParams{"continuationToken": continuationToken}
	if count > 0 {
		params["count"] = strconv.Itoa(count)
	}
	data, err := c.get(buildQuery(entityPath("tags", tagID)+"/propositions", params))
	if err != nil {
		return nil, err
	}
	return decodeOne[PropositionPage](data)
}

// --- Justifications ---

func (c *Client) GetJustification(id string) (map[string]any, error) {
	data, err := c.get(entityPath("justifications", id))
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) CreateJustification(justification map[string]any) (map[string]any, error) {
	data, err := c.post("/justifications", map[string]any{"justification": justification})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// --- Statements ---

func (c *Client) GetStatement(id string) (map[string]any, error) {
	data, err := c.get(entityPath("statements", id))
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) CreateStatement(statement map[string]any) (map[string]any, error) {
	data, err := c.post("/statements", map[string]any{"statement": statement})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// --- Persorgs ---

func (c *Client) GetPersorg(id string) (map[string]any, error) {
	data, err := c.get(entityPath("persorgs", id))
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) CreatePersorg(persorg map[string]any) (map[string]any, error) {
	data, err := c.post("/persorgs", map[string]any{"persorg": persorg})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func (c *Client) UpdatePersorg(id string, persorg map[string]any) (map[string]any, error) {
	data, err := c.put(entityPath("persorgs", id), map[string]any{"persorg": persorg})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// --- Writ Quotes ---

func (c *Client) CreateWritQuote(quote map[string]any) (map[string]any, error) {
	data, err := c.post("/writ-quotes", map[string]any{"writQuote": quote})
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

func entityPath(collection, id string) string {
	return fmt.Sprintf("/%s/%s", collection, url.PathEscape(id))
}
