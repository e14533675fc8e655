package webserver

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/pkg/common"
)

func enabledOperator(password string) domain.SysOpr {
	return domain.SysOpr{
		Username: "admin",
		Password: common.Sha256HashWithSalt(password, common.GetSecretSalt()),
		Status:   common.ENABLED,
	}
}

func TestCheckOperatorLogin(t *testing.T) {
	op := enabledOperator("pawshop")

	status, code, _ := checkOperatorLogin(nil, op, "pawshop")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, code)

	status, code, _ = checkOperatorLogin(nil, op, "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", code)

	status, code, _ = checkOperatorLogin(gorm.ErrRecordNotFound, domain.SysOpr{}, "pawshop")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", code)
}

func TestCheckOperatorLogin_DatabaseErrorIsNotBadCredentials(t *testing.T) {
	// the zero-value operator record must not trip the password comparison
	// when the lookup itself failed
	status, code, _ := checkOperatorLogin(errors.New("connection refused"), domain.SysOpr{}, "pawshop")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "DATABASE_ERROR", code)
}

func TestCheckOperatorLogin_DisabledAccount(t *testing.T) {
	op := enabledOperator("pawshop")
	op.Status = common.DISABLED

	status, code, _ := checkOperatorLogin(nil, op, "pawshop")

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ACCOUNT_DISABLED", code)
}
