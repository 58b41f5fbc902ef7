package cockroach

import (
	"fmt"
	"slices"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/ptr"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/btcsuite/btcutil/base58"
	"github.com/jackc/pgx/v5"
	"github.com/nicolasparada/go-errs"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultPageSize = 25

// Cursor is a keyset pagination point over (created_at, id).
type Cursor struct {
	ID        string    `msgpack:"i"`
	CreatedAt time.Time `msgpack:"v"`
}

func EncodeCursor(cursor Cursor) (string, error) {
	b, err := msgpack.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal cursor: %w", err)
	}

	return base58.Encode(b), nil
}

func DecodeCursor(s string) (Cursor, error) {
	var c Cursor

	b := base58.Decode(s)
	if err := msgpack.Unmarshal(b, &c); err != nil {
		return c, errs.InvalidArgumentError("invalid cursor")
	}

	return c, nil
}

type PageArgs struct {
	First  *uint
	After  *Cursor
	Last   *uint
	Before *Cursor
}

func (args PageArgs) IsBackwards() bool {
	return args.Last != nil || args.Before != nil
}

func ParsePageArgs(in types.PageArgs) (PageArgs, error) {
	var out PageArgs

	if in.After != nil {
		after, err := DecodeCursor(*in.After)
		if err != nil {
			return out, fmt.Errorf("decode after cursor: %w", err)
		}

		out.After = &after
	}

	if in.Before != nil {
		before, err := DecodeCursor(*in.Before)
		if err != nil {
			return out, fmt.Errorf("decode before cursor: %w", err)
		}

		out.Before = &before
	}

	out.First = in.First
	out.Last = in.Last

	return out, nil
}

func addPageFilter(query, table, tsCol string, args pgx.NamedArgs, pageArgs PageArgs) string {
	if pageArgs.After != nil {
		query += ` AND (` + table + `.` + tsCol + `, ` + table + `.id) < (@after_created_at, @after_id)`
		args["after_created_at"] = pageArgs.After.CreatedAt
		args["after_id"] = pageArgs.After.ID
	}

	if pageArgs.Before != nil {
		query += ` AND (` + table + `.` + tsCol + `, ` + table + `.id) > (@before_created_at, @before_id)`
		args["before_created_at"] = pageArgs.Before.CreatedAt
		args["before_id"] = pageArgs.Before.ID
	}

	return query
}

func addPageOrder(query, table, tsCol string, pageArgs PageArgs) string {
	if pageArgs.IsBackwards() {
		return query + ` ORDER BY ` + table + `.` + tsCol + ` ASC, ` + table + `.id ASC`
	}

	return query + ` ORDER BY ` + table + `.` + tsCol + ` DESC, ` + table + `.id DESC`
}

func addPageLimit(query string, args pgx.NamedArgs, pageArgs PageArgs) string {
	size := defaultPageSize
	if pageArgs.IsBackwards() {
		size = int(ptr.Or(pageArgs.Last, uint(defaultPageSize)))
	} else {
		size = int(ptr.Or(pageArgs.First, uint(defaultPageSize)))
	}

	// Fetch one extra row to learn whether another page exists.
	args["limit"] = size + 1
	return query + ` LIMIT @limit`
}

// applyPageInfo modifies the given page in-place: it cuts the extra
// row fetched by addPageLimit and restores descending order for
// backwards pagination.
func applyPageInfo[I any](page *types.Page[I], pageArgs PageArgs, cursorFunc func(item I) Cursor) error {
	l := uint(len(page.Items))
	if l == 0 {
		return nil
	}

	backwards := pageArgs.IsBackwards()
	if backwards {
		last := ptr.Or(pageArgs.Last, defaultPageSize)
		page.PageInfo.HasPreviousPage = l > last
		if page.PageInfo.HasPreviousPage {
			page.Items = page.Items[:last]
		}
		page.PageInfo.HasNextPage = pageArgs.Before != nil
	} else {
		first := ptr.Or(pageArgs.First, defaultPageSize)
		page.PageInfo.HasNextPage = l > first
		if page.PageInfo.HasNextPage {
			page.Items = page.Items[:first]
		}
		page.PageInfo.HasPreviousPage = pageArgs.After != nil
	}

	if backwards {
		slices.Reverse(page.Items)
	}

	l = uint(len(page.Items))
	if l == 0 {
		return nil
	}

	startCursor := cursorFunc(page.Items[0])
	endCursor := cursorFunc(page.Items[l-1])

	if c, err := EncodeCursor(startCursor); err != nil {
		return fmt.Errorf("encode start cursor: %w", err)
	} else {
		page.PageInfo.StartCursor = ptr.From(c)
	}

	if c, err := EncodeCursor(endCursor); err != nil {
		return fmt.Errorf("encode end cursor: %w", err)
	} else {
		page.PageInfo.EndCursor = ptr.From(c)
	}

	return nil
}
