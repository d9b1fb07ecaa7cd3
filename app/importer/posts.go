package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"blogport/app/models"
	"blogport/app/repositories"
)

const (
	// PlaceholderIP is recorded as the origin of all imported content.
	PlaceholderIP = "127.0.0.1"

	importedCommentSort = "old"
)

var (
	killTags           = regexp.MustCompile(`</?[iub]>`)
	categorySeparators = regexp.MustCompile(`[- ]`)
)

// UpsertPost creates the post for record, or overwrites the one a previous
// import created from the same permalink, then imports its comments.
func (r *Run) UpsertPost(record *models.ExternalPost) (*models.Post, error) {
	createdAt, err := ParseTimestamp(record.DateCreated, r.opts.Location)
	if err != nil {
		return nil, err
	}
	author, err := r.ResolveAccount(record.Author, record.AuthorEmail)
	if err != nil {
		return nil, err
	}

	post, err := r.posts.FindByPermalink(record.Permalink)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		post = &models.Post{ObPermalink: record.Permalink}
		r.fillPost(post, record, author, createdAt)
		if err := r.posts.Create(post); err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		r.result.PostsCreated++
	case err != nil:
		return nil, fmt.Errorf("find post by permalink %q: %w", record.Permalink, err)
	default:
		r.fillPost(post, record, author, createdAt)
		if err := r.posts.Update(post); err != nil {
			return nil, fmt.Errorf("update post %d: %w", post.ID, err)
		}
		r.result.PostsUpdated++
	}

	if err := r.importComments(post, record.Comments); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *Run) fillPost(post *models.Post, record *models.ExternalPost, author *models.Account, createdAt time.Time) {
	post.Title = killTags.ReplaceAllString(record.Title, "")
	post.Content = postBody(record)
	post.AuthorID = author.ID
	post.Collection = r.collection
	post.IP = PlaceholderIP
	post.Tags = postTags(record.Categories)
	post.CreatedAt = createdAt
	post.Blessed = true
	post.CommentSort = importedCommentSort
}

func postBody(record *models.ExternalPost) string {
	if record.TextMore == "" {
		return record.Description
	}
	return record.Description + models.MoreMarker + record.TextMore
}

func postTags(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}
	tags := make([]string, 0, len(categories))
	for _, category := range categories {
		tags = append(tags, categorySeparators.ReplaceAllString(strings.ToLower(category), "_"))
	}
	return tags
}

// importComments pairs the export's comments, in order, with the comments a
// previous import left on the post. Records without a partner are created;
// previously imported comments without a record are left alone.
func (r *Run) importComments(post *models.Post, records []models.ExternalComment) error {
	existing, err := r.comments.ListImportedByPost(post.ID)
	if err != nil {
		return fmt.Errorf("list imported comments of post %d: %w", post.ID, err)
	}

	idTable := make(map[models.ExternalID]int)
	paired := 0
	for i := range records {
		record := &records[i]
		if r.isSyndicated(record) {
			r.result.CommentsSkipped++
			continue
		}

		var target *models.Comment
		if paired < len(existing) {
			target = existing[paired]
		}
		paired++

		if err := r.UpsertComment(record, target, post, idTable); err != nil {
			return fmt.Errorf("comment %s: %w", record.CommentID, err)
		}
	}
	return nil
}

func (r *Run) isSyndicated(record *models.ExternalComment) bool {
	if r.opts.KeepSyndicated {
		return false
	}
	return strings.HasSuffix(record.Author, r.opts.SyndicationMarker)
}

// UpsertComment writes record onto target, or creates a new comment when
// target is nil, and records the new id under the record's export id.
func (r *Run) UpsertComment(record *models.ExternalComment, target *models.Comment, post *models.Post, idTable map[models.ExternalID]int) error {
	createdAt, err := ParseTimestamp(record.DateCreated, r.opts.Location)
	if err != nil {
		return err
	}
	author, err := r.ResolveAccount(record.Author, record.AuthorEmail)
	if err != nil {
		return err
	}

	parentID := 0
	if record.CommentParent != "" {
		parentID = idTable[record.CommentParent]
	}

	comment := target
	if comment == nil {
		comment = &models.Comment{}
	}
	comment.PostID = post.ID
	comment.ParentID = parentID
	comment.AuthorID = author.ID
	comment.Body = record.Body
	comment.IP = PlaceholderIP
	comment.CreatedAt = createdAt
	comment.IsHTML = true
	comment.ObImported = true

	if target == nil {
		if err := r.comments.Create(comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		r.result.CommentsCreated++
	} else {
		if err := r.comments.Update(comment); err != nil {
			return fmt.Errorf("update comment %d: %w", comment.ID, err)
		}
		r.result.CommentsUpdated++
	}

	if record.CommentID != "" {
		idTable[record.CommentID] = comment.ID
	}
	return nil
}
