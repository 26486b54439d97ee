package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// uniqueViolation はエラーが一意制約違反かどうかを判定し、違反した制約名を返す。
// 同時リクエストによる重複登録はストレージ層の一意制約で検出され、
// ここで制約名に応じたドメインエラーへ変換される。
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return pqErr.Constraint, true
	}
	return "", false
}
