package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON сериализует значение в канонический JSON с сортировкой ключей.
// Перестановка ключей во входном объекте не меняет результат.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	// Повторный проход через map[string]any: encoding/json
	// сериализует ключи map в отсортированном порядке
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canonical value: %w", err)
	}
	return canonical, nil
}

// InputHash детерминированный fingerprint входа: SHA-256 (64 hex-символа)
// над каноническим JSON тройки (birth_input, reference_version, ruleset_version)
func InputHash(input BirthInput, referenceVersion, rulesetVersion string) (string, error) {
	payload := map[string]any{
		"birth_input":       input,
		"reference_version": referenceVersion,
		"ruleset_version":   rulesetVersion,
	}
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build input fingerprint: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
