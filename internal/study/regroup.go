package study

import (
	"fmt"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostThread は投稿1件とそのコメント一覧の組を表す。
type PostThread struct {
	Post     *model.Post
	Comments []*model.Comment
}

// Regroup は独立に取得した投稿一覧とコメント一覧から
// 投稿→コメントの所有関係を復元する。
// 出力は投稿一覧の順序を保ち、コメントを持たない投稿も
// 空のコメント一覧付きで必ず含まれる。
// 未知の投稿を参照するコメントはデータ整合性エラーとなる。
func Regroup(posts []*model.Post, comments []*model.Comment) ([]*PostThread, error) {
	threads := make([]*PostThread, 0, len(posts))
	byPostID := make(map[string]*PostThread, len(posts))

	// 先に全投稿でスレッドを初期化する。コメント起点で構築すると
	// コメントのない投稿が出力から消えてしまう。
	for _, post := range posts {
		thread := &PostThread{Post: post}
		threads = append(threads, thread)
		byPostID[post.ID] = thread
	}

	for _, comment := range comments {
		thread, ok := byPostID[comment.PostID]
		if !ok {
			return nil, model.NewDataIntegrityError(
				fmt.Sprintf("コメント %s が存在しない投稿 %s を参照しています", comment.ID, comment.PostID))
		}
		thread.Comments = append(thread.Comments, comment)
	}

	return threads, nil
}
