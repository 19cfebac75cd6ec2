package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub/internal/handlers/testutil"
	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/services"
)

func TestMCQEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.AdminToken()
	user, _ := env.UserToken()

	question := testutil.MustData[services.MCQQuestionDTO](env, http.MethodPost, "/api/admin/mcq", map[string]any{
		"question":      "Unit of force?",
		"optionA":       "Joule",
		"optionB":       "Newton",
		"optionC":       "Watt",
		"optionD":       "Pascal",
		"correctOption": "B",
		"explanation":   "1 N = 1 kg m/s^2",
	}, admin, http.StatusCreated)
	require.Equal(t, models.MCQOptionB, question.CorrectOption)

	require.Equal(t, "BAD_REQUEST", env.ErrorCode(http.MethodPost, "/api/admin/mcq", map[string]any{
		"question": "Incomplete", "optionA": "x", "optionB": "y", "optionC": "z", "optionD": "w", "correctOption": "F",
	}, admin, http.StatusBadRequest))
	require.Equal(t, "FORBIDDEN", env.ErrorCode(http.MethodPost, "/api/admin/mcq", map[string]any{}, user, http.StatusForbidden))

	practice := testutil.MustData[[]services.MCQQuestionDTO](env, http.MethodGet, "/api/mcq", nil, user, http.StatusOK)
	require.Len(t, practice, 1)
	require.Empty(t, practice[0].CorrectOption)
	require.Nil(t, practice[0].Explanation)

	full := testutil.MustData[[]services.MCQQuestionDTO](env, http.MethodGet, "/api/admin/mcq", nil, admin, http.StatusOK)
	require.Equal(t, models.MCQOptionB, full[0].CorrectOption)

	result := testutil.MustData[services.MCQResult](env, http.MethodPost, "/api/mcq/"+question.ID+"/answer",
		map[string]any{"choice": "A"}, user, http.StatusOK)
	require.False(t, result.Correct)
	require.Equal(t, models.MCQOptionB, result.CorrectOption)
	require.Equal(t, "1 N = 1 kg m/s^2", *result.Explanation)

	require.Equal(t, "BAD_REQUEST", env.ErrorCode(http.MethodPost, "/api/mcq/"+question.ID+"/answer",
		map[string]any{"choice": "E"}, user, http.StatusBadRequest))
	require.Equal(t, "NOT_FOUND", env.ErrorCode(http.MethodPost, "/api/mcq/missing/answer",
		map[string]any{"choice": "A"}, user, http.StatusNotFound))

	w := env.Request(http.MethodDelete, "/api/admin/mcq/"+question.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "NOT_FOUND", env.ErrorCode(http.MethodDelete, "/api/admin/mcq/"+question.ID, nil, admin, http.StatusNotFound))
}
