package model

import "time"

// StudyResult は参加者セッションの結果ペイロードを表す。
// Dataにはアップロードされた結果ドキュメント全体をJSONのまま保持し、
// 残りのフィールドはフル読み込みなしで問い合わせるための非正規化カラム。
type StudyResult struct {
	ID           string
	StudyID      string
	StudyModTime int64
	SessionID    string
	StartTime    int64
	EndTime      int64
	Data         []byte // 結果ドキュメントのJSONバイト列。
	CreatedAt    time.Time
}
