package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/depositagent/agent"
	"github.com/tbxark/depositagent/slots"
)

var _ agent.AccountManager = (*ReceiptManager)(nil)

// ReceiptManager prints a receipt table for every submitted account.
type ReceiptManager struct {
	out io.Writer
}

func (m *ReceiptManager) Cancel(ctx context.Context, session *agent.Session) error {
	slog.Debug("Deposit session cancelled", "session_id", session.ID)
	return nil
}

func (m *ReceiptManager) Submit(ctx context.Context, completion *agent.Completion) error {
	spec := slots.For(completion.Variant)
	table := tablewriter.NewTable(m.out, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Detail", "Value")
	_ = table.Append("Reference", completion.Reference)
	_ = table.Append("Account", completion.Variant.DisplayName())
	for _, name := range spec.FieldNames() {
		if value, ok := completion.Slots[name]; ok {
			_ = table.Append(spec.Label(name), value)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}
