package services

import (
	"bytes"
	"encoding/json"
)

// Field 区分三种状态：字段缺省（Set=false）、显式 null（Null=true）、有值
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Val 构造一个有值的字段
func Val[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null 构造一个显式 null 的字段
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// present 有值时返回 true；显式 null 出现在不可为空的字段上时返回校验错误
func (f Field[T]) present(name string) (bool, error) {
	if !f.Set {
		return false, nil
	}
	if f.Null {
		return false, ErrValidation(name, "must not be null")
	}
	return true, nil
}

// ID 请求体中的标识，JSON 中既可以是数字也可以是字符串（全局 ID）
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
