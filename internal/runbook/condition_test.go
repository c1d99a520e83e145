package runbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func envWith(bindings map[string]string) *Environment {
	e := &Environment{bindings: make(map[string]string)}
	for k, v := range bindings {
		e.Set(k, v)
	}
	return e
}

func TestEvaluateConditionNegation(t *testing.T) {
	require.True(t, EvaluateCondition("!skip_tests", envWith(nil)))
	require.True(t, EvaluateCondition("!skip_tests", envWith(map[string]string{"skip_tests": "false"})))
	require.False(t, EvaluateCondition("!skip_tests", envWith(map[string]string{"skip_tests": "true"})))
}

func TestEvaluateConditionEquality(t *testing.T) {
	env := envWith(map[string]string{"env_name": "prod"})
	require.True(t, EvaluateCondition(`env_name == 'prod'`, env))
	require.True(t, EvaluateCondition(`env_name == "prod"`, env))
	require.False(t, EvaluateCondition(`env_name == 'staging'`, env))
}

func TestEvaluateConditionInequality(t *testing.T) {
	env := envWith(map[string]string{"env_name": "staging"})
	require.True(t, EvaluateCondition(`env_name != 'prod'`, env))
}

func TestEvaluateConditionBareTruthy(t *testing.T) {
	require.False(t, EvaluateCondition("feature_flag", envWith(nil)))
	require.False(t, EvaluateCondition("feature_flag", envWith(map[string]string{"feature_flag": "false"})))
	require.False(t, EvaluateCondition("feature_flag", envWith(map[string]string{"feature_flag": "0"})))
	require.True(t, EvaluateCondition("feature_flag", envWith(map[string]string{"feature_flag": "yes"})))
}

func TestEvaluateConditionUnboundIsFalsy(t *testing.T) {
	require.False(t, EvaluateCondition("typo_name == 'x'", envWith(nil)))
}
