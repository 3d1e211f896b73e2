/*
Package news implements the news feed: a public newest-first listing plus
admin-only creation and deletion.
*/
package news

import "time"

// Item is a single news article.
type Item struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
