package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/queue-dashboard/internal/export"
	"github.com/spec-kit/queue-dashboard/internal/view"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// pageDoc is the json/yaml shape of a printed page.
type pageDoc[T any] struct {
	Items      []T    `json:"items" yaml:"items"`
	Page       int    `json:"page" yaml:"page"`
	TotalPages int    `json:"total_pages" yaml:"total_pages"`
	TotalItems int    `json:"total_items" yaml:"total_items"`
	SortKey    string `json:"sort_key" yaml:"sort_key"`
	Direction  string `json:"direction" yaml:"direction"`
}

type queueDoc struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Ended   string `json:"ended" yaml:"ended"`
	Tickets int    `json:"tickets" yaml:"tickets"`
}

type userDoc struct {
	UserID      string `json:"user_id" yaml:"user_id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Email       string `json:"email" yaml:"email"`
	Tickets     int    `json:"tickets" yaml:"tickets"`
}

type ticketDoc struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
	Created     string `json:"created" yaml:"created"`
}

func toPageDoc[R, D any](res view.Result[R], convert func(R) D) pageDoc[D] {
	items := make([]D, len(res.Page.Items))
	for i, r := range res.Page.Items {
		items[i] = convert(r)
	}
	return pageDoc[D]{
		Items:      items,
		Page:       res.Page.Page,
		TotalPages: res.Page.TotalPages,
		TotalItems: res.Page.TotalItems,
		SortKey:    string(res.Sort.Key),
		Direction:  string(res.Sort.Direction),
	}
}

func queueToDoc(r view.QueueRow) queueDoc {
	return queueDoc{ID: r.ID, Title: r.Title, Ended: export.FormatTimestamp(r.EndTime), Tickets: r.TicketCount}
}

func userToDoc(r view.UserRow) userDoc {
	return userDoc{UserID: r.UserID, DisplayName: r.DisplayName, Email: r.Email, Tickets: r.TicketCount}
}

func ticketToDoc(r view.TicketRow) ticketDoc {
	return ticketDoc{ID: r.ID, Description: r.Description, Status: r.StatusLabel, Created: export.FormatTimestamp(r.CreatedAt)}
}

func renderQueues(w io.Writer, format string, res view.Result[view.QueueRow]) error {
	doc := toPageDoc(res, queueToDoc)
	rows := make([][]string, len(doc.Items))
	for i, q := range doc.Items {
		rows[i] = []string{q.ID, q.Title, q.Ended, strconv.Itoa(q.Tickets)}
	}
	return render(w, format, doc, []string{"ID", "QUEUE", "ENDED", "TICKETS"}, rows, footer(doc.Page, doc.TotalPages, doc.TotalItems))
}

func renderUsers(w io.Writer, format string, res view.Result[view.UserRow]) error {
	doc := toPageDoc(res, userToDoc)
	rows := make([][]string, len(doc.Items))
	for i, u := range doc.Items {
		rows[i] = []string{u.UserID, u.DisplayName, u.Email, strconv.Itoa(u.Tickets)}
	}
	return render(w, format, doc, []string{"USER", "NAME", "EMAIL", "TICKETS"}, rows, footer(doc.Page, doc.TotalPages, doc.TotalItems))
}

func renderUserDetail(w io.Writer, format string, detail view.UserDetail) error {
	doc := struct {
		User    userDoc     `json:"user" yaml:"user"`
		Tickets []ticketDoc `json:"tickets" yaml:"tickets"`
	}{User: userToDoc(detail.User), Tickets: make([]ticketDoc, len(detail.Tickets))}
	rows := make([][]string, len(detail.Tickets))
	for i, t := range detail.Tickets {
		doc.Tickets[i] = ticketToDoc(t)
		rows[i] = []string{doc.Tickets[i].ID, doc.Tickets[i].Status, doc.Tickets[i].Created, doc.Tickets[i].Description}
	}
	heading := fmt.Sprintf("%s <%s>: %d tickets", doc.User.DisplayName, doc.User.Email, doc.User.Tickets)
	if format == formatTable || format == "" {
		fmt.Fprintln(w, heading)
	}
	return render(w, format, doc, []string{"TICKET", "STATUS", "CREATED", "DESCRIPTION"}, rows, "")
}

func render(w io.Writer, format string, doc any, header []string, rows [][]string, trailer string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		writeRow(tw, header)
		for _, r := range rows {
			writeRow(tw, r)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if trailer != "" {
			fmt.Fprintln(w, trailer)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func footer(page, totalPages, totalItems int) string {
	return fmt.Sprintf("page %d of %d (%d rows)", page, totalPages, totalItems)
}
