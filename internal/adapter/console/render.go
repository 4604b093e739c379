package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"library-catalog/internal/usecase/library"
)

type palette struct {
	ok    func(format string, a ...interface{}) string
	fail  func(format string, a ...interface{}) string
	title func(format string, a ...interface{}) string
}

func newPalette(enabled bool) palette {
	ok := color.New(color.FgGreen)
	fail := color.New(color.FgHiRed)
	title := color.New(color.Bold)
	if !enabled {
		ok.DisableColor()
		fail.DisableColor()
		title.DisableColor()
	}
	return palette{ok: ok.SprintfFunc(), fail: fail.SprintfFunc(), title: title.SprintfFunc()}
}

const menu = `
--- Library Menu ---
1. Show All Books
2. Issue Book
3. Return Book
4. Show User's Issued Books
5. Add User
6. Show All Users
0. Exit
`

func renderMenu(w io.Writer, p palette) {
	fmt.Fprint(w, p.title("%s", menu))
}

func renderBooks(w io.Writer, p palette, resp *library.ListBooksResponse) {
	if resp.Total == 0 {
		fmt.Fprintln(w, "No books in the library.")
		return
	}
	fmt.Fprintln(w, p.title("Books in Library:"))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Author", "Status"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for b := range resp.Books {
		table.Append([]string{strconv.FormatInt(b.ID, 10), b.Title, b.Author, b.Status})
	}
	table.Render()
}

func renderUsers(w io.Writer, p palette, resp *library.ListUsersResponse) {
	if resp.Total == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	fmt.Fprintln(w, p.title("Registered Users:"))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Books Held"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for u := range resp.Users {
		table.Append([]string{strconv.FormatInt(u.ID, 10), u.Name, strconv.Itoa(u.HeldCount)})
	}
	table.Render()
}

func renderHeld(w io.Writer, resp *library.HeldBooksResponse) {
	fmt.Fprintf(w, "Books issued to %s:\n", resp.User.Name)
	if resp.Total == 0 {
		fmt.Fprintln(w, "  None")
		return
	}
	for title := range resp.Titles {
		fmt.Fprintf(w, "  - %s\n", title)
	}
}
