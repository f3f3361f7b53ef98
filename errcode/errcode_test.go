package errcode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleTable = `const errCode = {
  // 系统模块
  "1002000001": "系统错误",
  "1002000002": "参数错误",
  // 会员模块
  "1003000001": "会员不存在",
  // 验证码报错
  "0001000001": "验证码过期",
  "6201000001": "验证码无效"
}
`

func TestParse_Sections(t *testing.T) {
	f := Parse(sampleTable)

	if f.VarName != "errCode" {
		t.Fatalf("VarName = %q, want errCode", f.VarName)
	}
	if len(f.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(f.Sections))
	}

	headers := []string{f.Sections[0].Header, f.Sections[1].Header, f.Sections[2].Header}
	if diff := cmp.Diff([]string{"系统模块", "会员模块", "验证码报错"}, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	wantCodes := []string{"1002000001", "1002000002", "1003000001", "0001000001", "6201000001"}
	if diff := cmp.Diff(wantCodes, f.Codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}

	e, ok := f.Get("1003000001")
	if !ok || e.Message != "会员不存在" || e.Line != 6 {
		t.Errorf("Get(1003000001) = %+v, %v", e, ok)
	}
}

func TestParse_LeadingUnnamedSection(t *testing.T) {
	f := Parse("const errCode = {\n  \"42\": \"loose\",\n  // 系统模块\n  \"1002000001\": \"x\"\n}\n")
	if len(f.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(f.Sections))
	}
	if f.Sections[0].Header != "" || len(f.Sections[0].Entries) != 1 {
		t.Errorf("unnamed section = %+v", f.Sections[0])
	}
}

func TestParse_SkipsMalformedAndDuplicates(t *testing.T) {
	content := `const codes = {
  "1002000001": "first",
  "1002000001": "duplicate ignored",
  "notdigits": "skipped",
  "1002000002": 'single quotes fine',
  broken line here
}
`
	f := Parse(content)
	if f.VarName != "codes" {
		t.Errorf("VarName = %q, want codes", f.VarName)
	}
	want := []string{"1002000001", "1002000002"}
	if diff := cmp.Diff(want, f.Codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if e, _ := f.Get("1002000001"); e.Message != "first" {
		t.Errorf("duplicate overrode first entry: %q", e.Message)
	}
}

func TestParse_TotalFailureDegrades(t *testing.T) {
	f := Parse("this is not an error code table")
	if len(f.Codes()) != 0 {
		t.Errorf("expected no codes, got %v", f.Codes())
	}
}

func TestClassify_SwappedSections(t *testing.T) {
	f := Parse(`const errCode = {
  // 系统模块
  "1003000000": "会员错误",
  // 会员模块
  "1002000000": "系统错误"
}
`)
	res := Classify(f)

	wantMoves := []Move{
		{Code: "1003000000", From: 0, To: 1},
		{Code: "1002000000", From: 1, To: 0},
	}
	if diff := cmp.Diff(wantMoves, res.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if len(res.Ambiguous) != 0 {
		t.Errorf("unexpected ambiguities: %+v", res.Ambiguous)
	}
}

func TestClassify_FixedPoint(t *testing.T) {
	f := Parse(`const errCode = {
  // 系统模块
  "1003000000": "会员错误",
  "1002000001": "系统错误",
  // 会员模块
  "1002000000": "参数错误",
  // 运营模块
  "1005000001": "活动下线",
  "1006000001": "消息未读",
  // 信息模块
  "1006000002": "消息已删"
}
`)
	organized, res := Organize(f)
	if len(res.Moves) == 0 {
		t.Fatal("expected moves on first pass")
	}

	_, second := Organize(Parse(organized))
	if len(second.Moves) != 0 {
		t.Errorf("second pass still moves entries: %+v", second.Moves)
	}
}

func TestClassify_VerificationSection(t *testing.T) {
	f := Parse(`const errCode = {
  // 验证码报错
  "0001000001": "过期",
  // 系统模块
  "1002000001": "系统错误",
  "6201000001": "无效"
}
`)
	res := Classify(f)
	wantMoves := []Move{{Code: "6201000001", From: 1, To: 0}}
	if diff := cmp.Diff(wantMoves, res.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_AmbiguousCodeStaysPut(t *testing.T) {
	// Two generic sections both claim prefix 7777; the code sits in a
	// named section that cannot hold it. Neither candidate wins, so the
	// entry stays and the tie is reported.
	f := Parse(`const errCode = {
  // 系统模块
  "7777000003": "stray",
  "1002000001": "系统错误",
  // 支付模块
  "7777000001": "a",
  // 订单模块
  "7777000002": "b"
}
`)
	res := Classify(f)

	if len(res.Moves) != 0 {
		t.Fatalf("unexpected moves: %+v", res.Moves)
	}
	if len(res.Ambiguous) != 1 {
		t.Fatalf("got %d ambiguities, want 1: %+v", len(res.Ambiguous), res.Ambiguous)
	}
	amb := res.Ambiguous[0]
	if amb.Code != "7777000003" {
		t.Errorf("ambiguous code = %q", amb.Code)
	}
	if diff := cmp.Diff([]int{1, 2}, amb.Sections); diff != "" {
		t.Errorf("candidate sections mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SortsWithinSections(t *testing.T) {
	f := Parse(`const errCode = {
  // 系统模块
  "1002000002": "b",
  "1002000001": "a"
}
`)
	want := `const errCode = {
  // 系统模块
  "1002000001": "a",
  "1002000002": "b"
}
`
	if got := f.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_Idempotent(t *testing.T) {
	first := Parse(sampleTable).Render()
	second := Parse(first).Render()
	if first != second {
		t.Errorf("render not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}

	// The entry set survives the round trip.
	if diff := cmp.Diff(Parse(sampleTable).Messages(), Parse(first).Messages()); diff != "" {
		t.Errorf("entries changed across rebuild (-want +got):\n%s", diff)
	}
}

func TestOrganize_ScenarioOutput(t *testing.T) {
	f := Parse(`const errCode = {
  // 系统模块
  "1003000000": "会员错误",
  // 会员模块
  "1002000000": "系统错误"
}
`)
	got, _ := Organize(f)
	want := `const errCode = {
  // 系统模块
  "1002000000": "系统错误",

  // 会员模块
  "1003000000": "会员错误"
}
`
	if got != want {
		t.Errorf("Organize() = %q, want %q", got, want)
	}
}

func TestInsertMissing(t *testing.T) {
	source := Parse(sampleTable)
	target := Parse(`const errCode = {
  // 系统模块
  "1002000001": "system error",
  "9999000001": "target-only entry"
}
`)

	n := InsertMissing(target, source, map[string]string{
		"1002000002": "bad parameter",
		"1003000001": "member not found",
		// verification codes deliberately untranslated: skipped
	})
	if n != 2 {
		t.Fatalf("inserted %d entries, want 2", n)
	}

	want := `const errCode = {
  // 系统模块
  "1002000001": "system error",
  "1002000002": "bad parameter",
  "9999000001": "target-only entry",

  // 会员模块
  "1003000001": "member not found"
}
`
	if got := target.Render(); got != want {
		t.Errorf("render after insert = %q, want %q", got, want)
	}
}

func TestMerge(t *testing.T) {
	source := Parse(sampleTable)
	merged := Merge(source, map[string]string{
		"1002000001": "system error",
		"1003000001": "member not found",
	})

	want := `const errCode = {
  // 系统模块
  "1002000001": "system error",

  // 会员模块
  "1003000001": "member not found",

  // 验证码报错
}
`
	if got := merged.Render(); got != want {
		t.Errorf("merged render = %q, want %q", got, want)
	}
}
