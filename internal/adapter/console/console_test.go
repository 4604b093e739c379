package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"library-catalog/internal/adapter/db/memory"
	"library-catalog/internal/usecase/library"
)

// ConsoleTestSuite drives the menu with scripted input against a seeded in-memory library.
type ConsoleTestSuite struct {
	suite.Suite
	lib   *library.Library
	alice int64
	bob   int64
}

func (suite *ConsoleTestSuite) SetupTest() {
	log := zaptest.NewLogger(suite.T())
	suite.lib = library.New(
		memory.NewCatalogRepoMem(log),
		library.NewIDAllocator(100, 999, 32, rand.New(rand.NewPCG(11, 17))),
		log,
	)

	ids, err := suite.lib.Seed(context.Background())
	suite.Require().NoError(err)
	suite.alice, suite.bob = ids[0], ids[1]
}

func (suite *ConsoleTestSuite) run(script string) string {
	var out bytes.Buffer
	c := New(suite.lib, strings.NewReader(script), &out, zaptest.NewLogger(suite.T()), Options{})
	suite.Require().NoError(c.Run(context.Background()))
	return out.String()
}

func (suite *ConsoleTestSuite) TestShowBooks() {
	out := suite.run("1\n0\n")

	suite.Contains(out, "--- Library Menu ---")
	suite.Contains(out, "Books in Library:")
	suite.Contains(out, "Java Basics")
	suite.Contains(out, "Python Crash Course")
	suite.Contains(out, "Available")
	suite.True(strings.HasSuffix(out, "Exiting... Bye!\n"))
}

func (suite *ConsoleTestSuite) TestIssueThenConflict() {
	out := suite.run(fmt.Sprintf("2\n1\n%d\n2\n1\n%d\n1\n0\n", suite.alice, suite.bob))

	suite.Contains(out, "Enter Book ID: ")
	suite.Contains(out, "Enter User ID: ")
	suite.Contains(out, "Book issued successfully.")
	suite.Contains(out, "Book is already issued.")
	suite.Contains(out, "Issued")
}

func (suite *ConsoleTestSuite) TestReturnFlow() {
	script := fmt.Sprintf("2\n1\n%d\n3\n1\n%d\n3\n1\n%d\n3\n1\n%d\n0\n",
		suite.alice, suite.bob, suite.alice, suite.alice)
	out := suite.run(script)

	notHeld := strings.Index(out, "Book is not issued to this user.")
	returned := strings.Index(out, "Book returned successfully.")
	notIssued := strings.Index(out, "Book is not issued.")
	suite.Positive(notHeld)
	suite.Greater(returned, notHeld)
	suite.Greater(notIssued, returned)
}

func (suite *ConsoleTestSuite) TestNotFound() {
	out := suite.run(fmt.Sprintf("2\n999\n%d\n3\n1\n5\n4\n5\n0\n", suite.alice))

	suite.Equal(2, strings.Count(out, "Book or User not found."))
	suite.Contains(out, "Enter User ID: User not found.\n")
}

func (suite *ConsoleTestSuite) TestShowHeldBooks() {
	script := fmt.Sprintf("2\n1\n%d\n2\n2\n%d\n4\n%d\n4\n%d\n0\n",
		suite.alice, suite.alice, suite.alice, suite.bob)
	out := suite.run(script)

	suite.Contains(out, "Books issued to Alice:\n  - Java Basics\n  - Python Crash Course\n")
	suite.Contains(out, "Books issued to Bob:\n  None\n")
}

func (suite *ConsoleTestSuite) TestAddUser() {
	out := suite.run("5\nCarol\n6\n0\n")

	m := regexp.MustCompile(`User added successfully\. User ID: (\d+)`).FindStringSubmatch(out)
	suite.Require().Len(m, 2)
	id, err := strconv.ParseInt(m[1], 10, 64)
	suite.Require().NoError(err)
	suite.GreaterOrEqual(id, int64(100))
	suite.Less(id, int64(999))
	suite.NotEqual(suite.alice, id)
	suite.NotEqual(suite.bob, id)

	suite.Contains(out, "Registered Users:")
	suite.Contains(out, "Carol")
	suite.Contains(out, m[1])
}

func (suite *ConsoleTestSuite) TestAddUser_EmptyName() {
	out := suite.run("5\n   \n0\n")

	suite.Contains(out, "Name is required.")
	suite.NotContains(out, "User added successfully.")
}

func (suite *ConsoleTestSuite) TestAddUser_IDSpaceFull() {
	log := zaptest.NewLogger(suite.T())
	suite.lib = library.New(
		memory.NewCatalogRepoMem(log),
		library.NewIDAllocator(100, 102, 4, rand.New(rand.NewPCG(3, 5))),
		log,
	)
	_, err := suite.lib.Seed(context.Background())
	suite.Require().NoError(err)

	out := suite.run("5\nCarol\n0\n")

	suite.Contains(out, "Enter New User Name: No free user IDs left.\n")
	suite.NotContains(out, "not found")
}

func (suite *ConsoleTestSuite) TestNumbersShareALine() {
	out := suite.run(fmt.Sprintf("2\n1 %d\n0\n", suite.alice))

	suite.Contains(out, "Enter Book ID: Enter User ID: Book issued successfully.\n")
	suite.NotContains(out, "Please enter a valid number.")
	suite.True(strings.HasSuffix(out, "Enter your choice: Exiting... Bye!\n"))

	b, err := suite.lib.FindBook(context.Background(), 1)
	suite.Require().NoError(err)
	suite.True(b.Issued)
}

func (suite *ConsoleTestSuite) TestWholeCommandOnOneLine() {
	out := suite.run(fmt.Sprintf("2 2 %d\n4 %d\n0\n", suite.bob, suite.bob))

	suite.Contains(out, "Book issued successfully.")
	suite.Contains(out, "Books issued to Bob:\n  - Python Crash Course\n")
}

func (suite *ConsoleTestSuite) TestMalformedTokenDropsRestOfLine() {
	out := suite.run("abc 1\n0\n")

	suite.Equal(1, strings.Count(out, "Please enter a valid number."))
	suite.NotContains(out, "Books in Library:")
	suite.Contains(out, "Exiting... Bye!")
}

func (suite *ConsoleTestSuite) TestNameLineIgnoresLeftoverNumbers() {
	out := suite.run("5 7\nCarol\n6\n0\n")

	suite.Contains(out, "User added successfully. User ID: ")
	suite.Contains(out, "Carol")
	suite.NotContains(out, "Invalid option.")
}

func (suite *ConsoleTestSuite) TestMalformedAndUnknownInput() {
	out := suite.run("abc\n7\n2\nx\n1\n" + strconv.FormatInt(suite.alice, 10) + "\n0\n")

	suite.Equal(2, strings.Count(out, "Please enter a valid number."))
	suite.Contains(out, "Invalid option.")
	suite.Contains(out, "Book issued successfully.")
}

func (suite *ConsoleTestSuite) TestEOFExits() {
	suite.Contains(suite.run(""), "Exiting... Bye!")
	suite.Contains(suite.run("2\n1\n"), "Exiting... Bye!")
}

func (suite *ConsoleTestSuite) TestEmptyLibrary() {
	log := zaptest.NewLogger(suite.T())
	suite.lib = library.New(memory.NewCatalogRepoMem(log), nil, log)

	out := suite.run("1\n6\n0\n")

	suite.Contains(out, "No books in the library.")
	suite.Contains(out, "No users found.")
}

func (suite *ConsoleTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := New(suite.lib, strings.NewReader("1\n"), &out, zaptest.NewLogger(suite.T()), Options{})

	suite.ErrorIs(c.Run(ctx), context.Canceled)
	suite.Empty(out.String())
}

func (suite *ConsoleTestSuite) TestReadError() {
	boom := errors.New("broken pipe")
	var out bytes.Buffer
	c := New(suite.lib, iotest.ErrReader(boom), &out, zaptest.NewLogger(suite.T()), Options{})

	suite.ErrorIs(c.Run(context.Background()), boom)
}

func TestConsoleTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleTestSuite))
}
