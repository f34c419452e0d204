package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataMapsTaxonomy(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeResourceLoad:  http.StatusUnprocessableEntity,
		CodeDependency:    http.StatusServiceUnavailable,
		CodeNotFound:      http.StatusNotFound,
		CodeStateConflict: http.StatusConflict,
		Code("UNKNOWN"):   http.StatusInternalServerError,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("%s 状态码应为 %d，实际 %d", code, status, got)
		}
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("创建订单失败: %w", Wrap(CodeDependency, cause, "订单服务不可用"))
	if !errors.Is(err, cause) {
		t.Fatalf("错误链应包含原因")
	}
	if CodeOf(err) != CodeDependency || !Is(err, CodeDependency) {
		t.Fatalf("编码丢失: %v", err)
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatalf("普通错误应视为内部错误")
	}
}

func TestIsWalksNestedCodes(t *testing.T) {
	inner := New(CodeResourceLoad, "logo 无法解码")
	outer := Wrap(CodeDependency, inner, "导出失败")
	if !Is(outer, CodeResourceLoad) || !Is(outer, CodeDependency) {
		t.Fatalf("应能识别嵌套编码")
	}
	if Is(outer, CodeValidation) {
		t.Fatalf("不应匹配未出现的编码")
	}
}

func TestNilErrorIsSafe(t *testing.T) {
	var e *Error
	if e.Code() != CodeInternal || e.Message() != "" || e.Error() != "" || e.Unwrap() != nil {
		t.Fatalf("nil 错误访问器应返回零值")
	}
}
