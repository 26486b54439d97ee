package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EncodeSessionToken はセッションIDをHMAC-SHA256で署名したCookie値を生成する。
// 形式は "<session_id>.<signature>"。署名鍵はプロセス起動時に固定される。
func EncodeSessionToken(secret, sessionID string) string {
	return sessionID + "." + signSessionID(secret, sessionID)
}

// DecodeSessionToken はCookie値の署名を検証し、セッションIDを取り出す。
// 署名が不正な場合はfalseを返す。
func DecodeSessionToken(secret, token string) (string, bool) {
	sessionID, signature, found := strings.Cut(token, ".")
	if !found || sessionID == "" {
		return "", false
	}
	expected := signSessionID(secret, sessionID)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return sessionID, true
}

// signSessionID はセッションIDのHMAC-SHA256署名を16進文字列で返す。
func signSessionID(secret, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
