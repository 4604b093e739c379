// Package console drives the library through an interactive numbered menu.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"library-catalog/internal/usecase/library"
	apperrors "library-catalog/pkg/errors"
	"library-catalog/pkg/logger"
)

// ErrInvalidMenuChoice is reported for a number that names no menu entry.
var ErrInvalidMenuChoice = apperrors.NewStateError("invalid_menu_choice", "invalid option")

// Options tune console output.
type Options struct {
	Color bool
}

// Console reads commands from in and writes results to out.
type Console struct {
	uc  library.Usecase
	in  *lineReader
	out io.Writer
	log *zap.Logger
	p   palette
}

type command struct {
	name string
	run  func(c *Console, ctx context.Context) error
}

var commands = map[int64]command{
	1: {"show_books", (*Console).showBooks},
	2: {"issue_book", (*Console).issueBook},
	3: {"return_book", (*Console).returnBook},
	4: {"show_held_books", (*Console).showHeldBooks},
	5: {"add_user", (*Console).addUser},
	6: {"show_users", (*Console).showUsers},
}

// New creates a Console on top of uc.
func New(uc library.Usecase, in io.Reader, out io.Writer, log *zap.Logger, opts Options) *Console {
	p := newPalette(opts.Color)
	return &Console{
		uc:  uc,
		in:  newLineReader(in, out, p),
		out: out,
		log: log.Named("console"),
		p:   p,
	}
}

// Run shows the menu until the user picks 0, input ends, or ctx is canceled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		renderMenu(c.out, c.p)
		choice, err := c.in.readInt("Enter your choice: ")
		if err != nil {
			return c.exit(err)
		}

		if choice == 0 {
			return c.exit(nil)
		}

		cmd, ok := commands[choice]
		if !ok {
			c.log.Debug("unknown menu choice", zap.Int64("choice", choice), zap.Error(ErrInvalidMenuChoice))
			fmt.Fprintln(c.out, c.p.fail("Invalid option."))
			continue
		}

		cmdCtx := logger.NewCommandContext(ctx, cmd.name)
		logger.WithContext(cmdCtx, c.log).Debug("command started")
		if err := cmd.run(c, cmdCtx); err != nil {
			return c.exit(err)
		}
	}
}

// exit ends the loop. Exhausted input counts as a normal exit.
func (c *Console) exit(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		c.log.Error("console input failed", zap.Error(err))
		return err
	}
	fmt.Fprintln(c.out, "Exiting... Bye!")
	return nil
}

func (c *Console) showBooks(ctx context.Context) error {
	resp, err := c.uc.ListBooks(ctx)
	if err != nil {
		c.reportFailure(ctx, err, "")
		return nil
	}
	renderBooks(c.out, c.p, resp)
	return nil
}

func (c *Console) showUsers(ctx context.Context) error {
	resp, err := c.uc.ListUsers(ctx)
	if err != nil {
		c.reportFailure(ctx, err, "")
		return nil
	}
	renderUsers(c.out, c.p, resp)
	return nil
}

func (c *Console) readBookAndUser() (bookID, userID int64, err error) {
	if bookID, err = c.in.readInt("Enter Book ID: "); err != nil {
		return 0, 0, err
	}
	if userID, err = c.in.readInt("Enter User ID: "); err != nil {
		return 0, 0, err
	}
	return bookID, userID, nil
}

func (c *Console) issueBook(ctx context.Context) error {
	bookID, userID, err := c.readBookAndUser()
	if err != nil {
		return err
	}

	if err := c.uc.IssueBook(ctx, library.IssueBookRequest{BookID: bookID, UserID: userID}); err != nil {
		c.reportFailure(ctx, err, "Book or User not found.")
		return nil
	}
	fmt.Fprintln(c.out, c.p.ok("Book issued successfully."))
	return nil
}

func (c *Console) returnBook(ctx context.Context) error {
	bookID, userID, err := c.readBookAndUser()
	if err != nil {
		return err
	}

	if err := c.uc.ReturnBook(ctx, library.ReturnBookRequest{BookID: bookID, UserID: userID}); err != nil {
		c.reportFailure(ctx, err, "Book or User not found.")
		return nil
	}
	fmt.Fprintln(c.out, c.p.ok("Book returned successfully."))
	return nil
}

func (c *Console) showHeldBooks(ctx context.Context) error {
	userID, err := c.in.readInt("Enter User ID: ")
	if err != nil {
		return err
	}

	resp, err := c.uc.HeldBooks(ctx, userID)
	if err != nil {
		c.reportFailure(ctx, err, "User not found.")
		return nil
	}
	renderHeld(c.out, resp)
	return nil
}

func (c *Console) addUser(ctx context.Context) error {
	name, err := c.in.readLine("Enter New User Name: ")
	if err != nil {
		return err
	}

	resp, err := c.uc.AddUser(ctx, library.AddUserRequest{Name: name})
	if err != nil {
		c.reportFailure(ctx, err, "")
		return nil
	}
	fmt.Fprintln(c.out, c.p.ok("User added successfully. User ID: %d", resp.ID))
	return nil
}

// reportFailure prints a one-line explanation of err. notFound is the text shown for missing entities.
func (c *Console) reportFailure(ctx context.Context, err error, notFound string) {
	var ve *apperrors.ValidationError
	var msg string
	switch {
	case errors.Is(err, apperrors.ErrNotFound) && notFound != "":
		msg = notFound
	case errors.Is(err, apperrors.ErrAlreadyIssued):
		msg = "Book is already issued."
	case errors.Is(err, apperrors.ErrNotIssued):
		msg = "Book is not issued."
	case errors.Is(err, apperrors.ErrNotHeld):
		msg = "Book is not issued to this user."
	case errors.Is(err, apperrors.ErrIDSpaceExhausted):
		msg = "No free user IDs left."
	case errors.As(err, &ve):
		msg = ve.Message + "."
	default:
		logger.WithContext(ctx, c.log).Error("command failed", zap.Error(err))
		msg = "Something went wrong, please try again."
	}
	fmt.Fprintln(c.out, c.p.fail("%s", msg))
}
