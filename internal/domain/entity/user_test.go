package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BeforeSave не использует tx, но сигнатура требует его
var mockTx *gorm.DB = nil

func TestUser_BeforeSave_HashesPassword(t *testing.T) {
	// Arrange
	plainPassword := "mySecretPassword123"
	user := &User{Nickname: "tester", Password: plainPassword}

	// Act
	err := user.BeforeSave(mockTx)

	// Assert
	require.NoError(t, err, "BeforeSave не должен возвращать ошибку")
	assert.NotEqual(t, plainPassword, user.Password, "Пароль должен быть изменён после хеширования")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plainPassword)))
}

func TestUser_BeforeSave_SkipsAlreadyHashedPassword(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("alreadyHashed"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &User{Nickname: "tester", Password: string(hashedPassword)}
	originalHash := user.Password

	require.NoError(t, user.BeforeSave(mockTx))
	assert.Equal(t, originalHash, user.Password, "Уже хешированный пароль не должен изменяться")
}

func TestUser_BeforeSave_SkipsEmptyPassword(t *testing.T) {
	user := &User{Nickname: "tester"}

	require.NoError(t, user.BeforeSave(mockTx))
	assert.Empty(t, user.Password)
}

func TestUser_CheckPassword(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("correctPassword123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{Nickname: "tester", Password: string(hashedPassword)}

	assert.True(t, user.CheckPassword("correctPassword123"))
	assert.False(t, user.CheckPassword("wrongPassword456"))
	assert.False(t, user.CheckPassword(""))
	assert.False(t, (&User{}).CheckPassword(""), "пользователь без пароля не проходит проверку")
}

func TestUser_HasEmail(t *testing.T) {
	blank := "  "
	addr := "a@b.c"

	assert.False(t, (&User{}).HasEmail())
	assert.False(t, (&User{Email: &blank}).HasEmail())
	assert.True(t, (&User{Email: &addr}).HasEmail())
}

func TestUser_ResetTokenValid(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := "abc"
	expiry := now.Add(time.Hour)

	user := &User{ResetToken: &token, ResetTokenExpiry: &expiry}
	assert.True(t, user.ResetTokenValid(now))
	assert.False(t, user.ResetTokenValid(now.Add(2*time.Hour)))
	assert.False(t, (&User{}).ResetTokenValid(now))
}
