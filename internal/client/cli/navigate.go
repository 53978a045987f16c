package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ridegate/internal/client/client"
	"github.com/dmitrijs2005/ridegate/internal/client/guard"
	"github.com/dmitrijs2005/ridegate/internal/common"
)

// Open goes to path if the session may see it.
func (a *App) Open(ctx context.Context, path string) error {
	switch d := a.guard.Visit(path); d.Outcome {
	case guard.Render:
		fmt.Fprintln(a.out, "Opened", a.nav.Current())
	case guard.Redirect:
		fmt.Fprintf(a.out, "Access denied, redirected to %s\n", d.Path)
	default:
		fmt.Fprintln(a.out, "Loading...")
	}
	return nil
}

// Back returns to the previous page, checking it again on the way.
func (a *App) Back(ctx context.Context) error {
	prev, ok := a.nav.Back()
	if !ok {
		fmt.Fprintln(a.out, "No previous page")
		return nil
	}
	return a.Open(ctx, prev)
}

// Pages lists the pages the current session may open.
func (a *App) Pages(ctx context.Context) error {
	s := a.session.Snapshot()
	for _, area := range a.guard.Areas() {
		if area.Public() || guard.Decide(s, area).Outcome != guard.Render {
			continue
		}
		for _, p := range area.Pages {
			fmt.Fprintf(a.out, "  %s/%s\n", area.Prefix, p)
		}
	}
	return nil
}

// Get fetches an API resource through the authenticated client and prints
// it as indented JSON.
func (a *App) Get(ctx context.Context, path string) error {
	var body json.RawMessage
	if err := a.api.GetJSON(ctx, path, &body); err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			fmt.Fprintln(a.out, "Session expired. Please log in again.")
		} else {
			fmt.Fprintln(a.out, client.UserMessage(err, client.MsgRequestFailed))
		}
		return err
	}

	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		out = body
	}
	fmt.Fprintln(a.out, string(out))
	return nil
}
